package survey

import (
	"errors"
	"fmt"
	"strings"

	"fieldsurvey/internal/reference"
	"fieldsurvey/pkg/types"
)

const MobileLength = 10

// Mode selects how evidence fields are satisfied.
type Mode int

const (
	// PendingUploads accepts an attachment that has not been uploaded yet.
	PendingUploads Mode = iota
	// Strict requires a resolved link for every evidence field.
	Strict
)

type AccountResolver interface {
	Lookup(id string) (*types.AccountRecord, error)
}

type Validator struct {
	accounts AccountResolver
}

func NewValidator(accounts AccountResolver) *Validator {
	return &Validator{accounts: accounts}
}

// Validate checks sub against def and returns every failure at once as
// types.ValidationErrors, or nil. def is nil when the remark code is unknown.
// It has no side effects.
func (v *Validator) Validate(sub *types.Submission, def *types.RemarkDefinition, mode Mode) error {
	var errs types.ValidationErrors

	if err := v.checkAccount(sub.AccountID); err != nil {
		errs = append(errs, err)
	}

	if !ValidMobile(sub.Mobile) {
		errs = append(errs, types.NewInputError(types.FieldMobile, "Mobile number must be exactly 10 digits."))
	}

	if def == nil {
		errs = append(errs, types.NewInputError(types.FieldRemark, "Select a valid remark."))
		return errs
	}

	for _, f := range def.Fields {
		if f.IsEvidence() {
			if hasEvidence(sub, f.Name, mode) {
				continue
			}
			errs = append(errs, types.NewInputError(string(f.Name), fmt.Sprintf("%s is required.", f.Label())))
			continue
		}

		if strings.TrimSpace(sub.Text[f.Name]) == "" {
			errs = append(errs, types.NewInputError(string(f.Name), fmt.Sprintf("%s is required.", f.Label())))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) checkAccount(id string) *types.SurveyError {
	if err := reference.CheckID(id); err != nil {
		return err
	}

	_, err := v.accounts.Lookup(id)
	if err == nil {
		return nil
	}

	var serr *types.SurveyError
	if errors.As(err, &serr) {
		return serr
	}

	return &types.SurveyError{Kind: types.LookupMiss, Field: types.FieldAccountID, Message: "account lookup failed", Err: err}
}

func hasEvidence(sub *types.Submission, name types.FieldName, mode Mode) bool {
	if strings.TrimSpace(sub.Evidence[name]) != "" {
		return true
	}
	if mode == Strict {
		return false
	}
	att, ok := sub.Attachments[name]
	return ok && len(att.Data) > 0
}

// ValidMobile accepts exactly ten ASCII digits.
func ValidMobile(mobile string) bool {
	return len(mobile) == MobileLength && reference.IsDigits(mobile)
}
