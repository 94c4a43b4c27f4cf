package types

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	// InputError covers malformed identifiers, mobiles and missing fields.
	InputError ErrorKind = "input"
	// LookupMiss is an identifier absent from the reference table.
	LookupMiss ErrorKind = "lookup_miss"
	// UploadError is a decode or transport failure for one evidence field.
	UploadError ErrorKind = "upload"
	// PersistenceError is a failed probe or append on the shared table.
	PersistenceError ErrorKind = "persistence"
)

// Form-level keys used when an error is not tied to a remark field.
const (
	FieldAccountID = "account_id"
	FieldMobile    = "mobile"
	FieldRemark    = "remark"
)

// SurveyError is a user-recoverable failure. Field names the form input the
// user has to correct, empty when the failure is not tied to one input.
type SurveyError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *SurveyError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" [")
		b.WriteString(e.Field)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SurveyError) Unwrap() error {
	return e.Err
}

func NewInputError(field, msg string) *SurveyError {
	return &SurveyError{Kind: InputError, Field: field, Message: msg}
}

func NewLookupMiss(id string) *SurveyError {
	return &SurveyError{
		Kind:    LookupMiss,
		Field:   FieldAccountID,
		Message: fmt.Sprintf("account %s not found", id),
	}
}

func NewUploadError(field FieldName, msg string, err error) *SurveyError {
	return &SurveyError{Kind: UploadError, Field: string(field), Message: msg, Err: err}
}

func NewPersistenceError(msg string, err error) *SurveyError {
	return &SurveyError{Kind: PersistenceError, Message: msg, Err: err}
}

// ValidationErrors is the full ordered list of failures for one submission.
type ValidationErrors []*SurveyError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ByField maps form inputs to their message for template rendering.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := out[e.Field]; ok {
			continue
		}
		out[e.Field] = e.Message
	}
	return out
}

func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Field)
	}
	return out
}

// KindOf reports the kind of the first SurveyError found in err's chain.
// A ValidationErrors reports the kind of its first entry.
func KindOf(err error) (ErrorKind, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Kind, true
	}

	var serr *SurveyError
	if errors.As(err, &serr) {
		return serr.Kind, true
	}

	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
