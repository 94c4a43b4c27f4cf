package survey

import (
	"context"
	"time"

	"fieldsurvey/pkg/types"
)

const TimestampLayout = "2006-01-02 15:04:05"

// RowColumns is the fixed header of the shared table.
var RowColumns = []string{
	"ACCOUNT ID",
	"REMARK",
	"ZONE",
	"CIRCLE",
	"DIVISION",
	"SUB-DIVISION",
	"MOBILE",
	"REQUIRED REMARK",
	"METER SERIAL",
	"READING",
	"DEMAND",
	"METER IMAGE",
	"PREMISES IMAGE",
	"DOCUMENT",
	"TIMESTAMP",
}

// RowAppender writes one serialized submission to the shared table. Append
// either lands the whole row or returns an error.
type RowAppender interface {
	Probe(ctx context.Context) error
	Append(ctx context.Context, row []string) error
}

// BuildRow serializes a validated submission. Fields the remark does not
// require are left empty even if the form carried a value for them.
func BuildRow(sub *types.Submission, def types.RemarkDefinition, loc *time.Location) []string {
	value := func(name types.FieldName) string {
		if !def.Requires(name) {
			return ""
		}
		if name.Kind() == types.FieldKindEvidence {
			return sub.Evidence[name]
		}
		return sub.Text[name]
	}

	var acct types.AccountRecord
	if sub.Account != nil {
		acct = *sub.Account
	}

	if loc == nil {
		loc = time.UTC
	}

	return []string{
		sub.AccountID,
		def.Code,
		acct.Zone,
		acct.Circle,
		acct.Division,
		acct.SubDivision,
		sub.Mobile,
		"",
		value(types.FieldMeterSerial),
		value(types.FieldReading),
		value(types.FieldDemand),
		value(types.FieldMeterImage),
		value(types.FieldPremisesImage),
		value(types.FieldDocument),
		sub.Timestamp.In(loc).Format(TimestampLayout),
	}
}
