package survey

import (
	"testing"

	"fieldsurvey/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeSubmission fills every field def requires, evidence as links.
func completeSubmission(def types.RemarkDefinition) *types.Submission {
	sub := types.NewSubmission("12345", def.Code, "9876543210")
	for _, f := range def.Fields {
		if f.IsEvidence() {
			sub.Evidence[f.Name] = "https://files.test/" + string(f.Name)
			continue
		}
		sub.Text[f.Name] = "value-" + string(f.Name)
	}
	return sub
}

func validationErrors(t *testing.T, err error) types.ValidationErrors {
	t.Helper()

	require.Error(t, err)
	verrs, ok := err.(types.ValidationErrors)
	require.True(t, ok, "want ValidationErrors, got %T", err)
	return verrs
}

func TestValidMobile(t *testing.T) {
	tests := []struct {
		mobile string
		want   bool
	}{
		{"9876543210", true},
		{"0000000000", true},
		{"987654321", false},
		{"98765432101", false},
		{"98765 43210", false},
		{"98765-4321", false},
		{"+919876543", false},
		{"abcdefghij", false},
		{"９８７６５４３２１０", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mobile, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidMobile(tt.mobile))
		})
	}
}

func TestValidator_AcceptsCompleteSubmissions(t *testing.T) {
	schema := DefaultSchema()
	v := NewValidator(testAccounts())

	for _, def := range schema.Definitions() {
		t.Run(def.Code, func(t *testing.T) {
			assert.NoError(t, v.Validate(completeSubmission(def), &def, Strict))
		})
	}
}

func TestValidator_ReportsExactlyTheMissingFields(t *testing.T) {
	schema := DefaultSchema()
	v := NewValidator(testAccounts())

	for _, def := range schema.Definitions() {
		// every non-empty subset of the required fields
		n := len(def.Fields)
		for mask := 1; mask < 1<<n; mask++ {
			sub := completeSubmission(def)
			var want []string
			for i, f := range def.Fields {
				if mask&(1<<i) == 0 {
					continue
				}
				want = append(want, string(f.Name))
				if f.IsEvidence() {
					delete(sub.Evidence, f.Name)
				} else {
					sub.Text[f.Name] = "   "
				}
			}

			verrs := validationErrors(t, v.Validate(sub, &def, Strict))
			assert.Equal(t, want, verrs.Fields(), "remark %s mask %b", def.Code, mask)
			for _, e := range verrs {
				assert.Equal(t, types.InputError, e.Kind)
			}
		}
	}
}

func TestValidator_AllFailuresAtOnce(t *testing.T) {
	schema := DefaultSchema()
	v := NewValidator(testAccounts())
	def, _ := schema.Definition(RemarkOK)

	sub := types.NewSubmission("99999", RemarkOK, "12345")

	verrs := validationErrors(t, v.Validate(sub, &def, PendingUploads))
	assert.Equal(t, []string{
		types.FieldAccountID,
		types.FieldMobile,
		string(types.FieldMeterSerial),
		string(types.FieldReading),
		string(types.FieldDemand),
		string(types.FieldMeterImage),
	}, verrs.Fields())
	assert.Equal(t, types.LookupMiss, verrs[0].Kind)
	assert.Equal(t, types.InputError, verrs[1].Kind)
}

func TestValidator_UnknownRemark(t *testing.T) {
	v := NewValidator(testAccounts())
	sub := types.NewSubmission("12345", "NOT A CODE", "9876543210")

	verrs := validationErrors(t, v.Validate(sub, nil, PendingUploads))
	assert.Equal(t, []string{types.FieldRemark}, verrs.Fields())
}

func TestValidator_MalformedAccountIsInputError(t *testing.T) {
	v := NewValidator(testAccounts())
	def, _ := DefaultSchema().Definition(RemarkHouseLocked)

	sub := completeSubmission(def)
	sub.AccountID = "12-345"

	verrs := validationErrors(t, v.Validate(sub, &def, Strict))
	require.Len(t, verrs, 1)
	assert.Equal(t, types.InputError, verrs[0].Kind)
	assert.Equal(t, types.FieldAccountID, verrs[0].Field)
}

func TestValidator_PendingUploadsAcceptAttachments(t *testing.T) {
	v := NewValidator(testAccounts())
	def, _ := DefaultSchema().Definition(RemarkNoMeterAtSite)

	sub := types.NewSubmission("12345", RemarkNoMeterAtSite, "9876543210")
	sub.Attachments[types.FieldPremisesImage] = types.Attachment{Field: types.FieldPremisesImage, Data: []byte{1}}

	assert.NoError(t, v.Validate(sub, &def, PendingUploads))

	verrs := validationErrors(t, v.Validate(sub, &def, Strict))
	assert.Equal(t, []string{string(types.FieldPremisesImage)}, verrs.Fields())
}

func TestValidator_NoMeterAtSiteWithoutPremisesImage(t *testing.T) {
	v := NewValidator(testAccounts())
	def, _ := DefaultSchema().Definition(RemarkNoMeterAtSite)

	sub := types.NewSubmission("12345", RemarkNoMeterAtSite, "9876543210")
	sub.Text[types.FieldMeterSerial] = "ignored"

	verrs := validationErrors(t, v.Validate(sub, &def, PendingUploads))
	require.Len(t, verrs, 1)
	assert.Equal(t, string(types.FieldPremisesImage), verrs[0].Field)
	assert.Equal(t, "Premises Image is required.", verrs[0].Message)
}
