package survey

import (
	"fmt"
	"strings"

	"fieldsurvey/pkg/types"
)

// Condition codes offered to technicians, in display order.
const (
	RemarkOK                      = "OK"
	RemarkNoMeterAtSite           = "NO METER AT SITE"
	RemarkMeterDefective          = "METER DEFECTIVE"
	RemarkMeterBurnt              = "METER BURNT"
	RemarkHouseLocked             = "HOUSE LOCKED"
	RemarkPermanentlyDisconnected = "PERMANENTLY DISCONNECTED"
	RemarkPremisesDemolished      = "PREMISES DEMOLISHED"
	RemarkBillPaid                = "BILL PAID"
)

// Schema is the fixed mapping from condition code to required fields.
type Schema struct {
	order []string
	defs  map[string]types.RemarkDefinition
}

func text(name types.FieldName) types.FieldSpec {
	return types.FieldSpec{Name: name, Kind: types.FieldKindText}
}

func evidence(name types.FieldName) types.FieldSpec {
	return types.FieldSpec{Name: name, Kind: types.FieldKindEvidence}
}

func DefaultSchema() *Schema {
	s, err := NewSchema(
		types.RemarkDefinition{Code: RemarkOK, Label: "OK", Fields: []types.FieldSpec{
			text(types.FieldMeterSerial),
			text(types.FieldReading),
			text(types.FieldDemand),
			evidence(types.FieldMeterImage),
		}},
		types.RemarkDefinition{Code: RemarkNoMeterAtSite, Label: "No meter at site", Fields: []types.FieldSpec{
			evidence(types.FieldPremisesImage),
		}},
		types.RemarkDefinition{Code: RemarkMeterDefective, Label: "Meter defective", Fields: []types.FieldSpec{
			text(types.FieldMeterSerial),
			evidence(types.FieldMeterImage),
			evidence(types.FieldPremisesImage),
		}},
		types.RemarkDefinition{Code: RemarkMeterBurnt, Label: "Meter burnt", Fields: []types.FieldSpec{
			text(types.FieldMeterSerial),
			evidence(types.FieldMeterImage),
		}},
		types.RemarkDefinition{Code: RemarkHouseLocked, Label: "House locked", Fields: []types.FieldSpec{
			evidence(types.FieldPremisesImage),
		}},
		types.RemarkDefinition{Code: RemarkPermanentlyDisconnected, Label: "Permanently disconnected", Fields: []types.FieldSpec{
			text(types.FieldDemand),
			evidence(types.FieldDocument),
		}},
		types.RemarkDefinition{Code: RemarkPremisesDemolished, Label: "Premises demolished", Fields: []types.FieldSpec{
			evidence(types.FieldPremisesImage),
		}},
		types.RemarkDefinition{Code: RemarkBillPaid, Label: "Bill paid", Fields: []types.FieldSpec{
			text(types.FieldDemand),
			evidence(types.FieldDocument),
		}},
	)
	if err != nil {
		panic(fmt.Errorf("default remark schema: %w", err))
	}
	return s
}

// NewSchema checks every definition against the closed field set: codes are
// unique and non-empty, every field is known, declared with its intrinsic
// kind and listed once.
func NewSchema(defs ...types.RemarkDefinition) (*Schema, error) {
	s := &Schema{
		order: make([]string, 0, len(defs)),
		defs:  make(map[string]types.RemarkDefinition, len(defs)),
	}

	for _, def := range defs {
		code := strings.TrimSpace(def.Code)
		if code == "" {
			return nil, fmt.Errorf("remark definition with empty code")
		}
		if _, ok := s.defs[code]; ok {
			return nil, fmt.Errorf("duplicate remark code %q", code)
		}

		seen := make(map[types.FieldName]bool, len(def.Fields))
		for _, f := range def.Fields {
			if !f.Name.Valid() {
				return nil, fmt.Errorf("remark %q: unknown field %q", code, f.Name)
			}
			if f.Kind != f.Name.Kind() {
				return nil, fmt.Errorf("remark %q: field %q declared %s, want %s", code, f.Name, f.Kind, f.Name.Kind())
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("remark %q: field %q listed twice", code, f.Name)
			}
			seen[f.Name] = true
		}

		def.Code = code
		if def.Label == "" {
			def.Label = code
		}
		def.Fields = append([]types.FieldSpec(nil), def.Fields...)

		s.order = append(s.order, code)
		s.defs[code] = def
	}

	return s, nil
}

func (s *Schema) Definition(code string) (types.RemarkDefinition, bool) {
	def, ok := s.defs[strings.TrimSpace(code)]
	return def, ok
}

func (s *Schema) Codes() []string {
	return append([]string(nil), s.order...)
}

func (s *Schema) Definitions() []types.RemarkDefinition {
	out := make([]types.RemarkDefinition, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.defs[code])
	}
	return out
}
