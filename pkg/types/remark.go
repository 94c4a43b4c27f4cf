package types

type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindEvidence FieldKind = "evidence"
)

// FieldName is the closed set of condition-dependent fields a remark can
// require. Every name has exactly one kind.
type FieldName string

const (
	FieldMeterSerial   FieldName = "meter_serial"
	FieldReading       FieldName = "reading"
	FieldDemand        FieldName = "demand"
	FieldMeterImage    FieldName = "meter_image"
	FieldPremisesImage FieldName = "premises_image"
	FieldDocument      FieldName = "document"
)

type fieldInfo struct {
	kind  FieldKind
	label string
}

var knownFields = map[FieldName]fieldInfo{
	FieldMeterSerial:   {kind: FieldKindText, label: "Meter Serial Number"},
	FieldReading:       {kind: FieldKindText, label: "Meter Reading"},
	FieldDemand:        {kind: FieldKindText, label: "Demand"},
	FieldMeterImage:    {kind: FieldKindEvidence, label: "Meter Image"},
	FieldPremisesImage: {kind: FieldKindEvidence, label: "Premises Image"},
	FieldDocument:      {kind: FieldKindEvidence, label: "Supporting Document"},
}

// TextFields and EvidenceFields list the names in row order.
var (
	TextFields     = []FieldName{FieldMeterSerial, FieldReading, FieldDemand}
	EvidenceFields = []FieldName{FieldMeterImage, FieldPremisesImage, FieldDocument}
)

func (n FieldName) Valid() bool {
	_, ok := knownFields[n]
	return ok
}

func (n FieldName) Kind() FieldKind {
	return knownFields[n].kind
}

func (n FieldName) Label() string {
	if info, ok := knownFields[n]; ok {
		return info.label
	}
	return string(n)
}

type FieldSpec struct {
	Name FieldName
	Kind FieldKind
}

func (f FieldSpec) Label() string {
	return f.Name.Label()
}

func (f FieldSpec) IsEvidence() bool {
	return f.Kind == FieldKindEvidence
}

// RemarkDefinition is one condition code and the ordered fields it requires.
type RemarkDefinition struct {
	Code   string
	Label  string
	Fields []FieldSpec
}

func (d RemarkDefinition) Requires(name FieldName) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (d RemarkDefinition) EvidenceFields() []FieldSpec {
	out := make([]FieldSpec, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.IsEvidence() {
			out = append(out, f)
		}
	}
	return out
}
