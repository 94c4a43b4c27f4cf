package types

import (
	"fmt"
	"time"
)

type SubmissionState string

const (
	StateEmpty           SubmissionState = "EMPTY"
	StateAccountResolved SubmissionState = "ACCOUNT_RESOLVED"
	StateRemarkSelected  SubmissionState = "REMARK_SELECTED"
	StateFieldsCollected SubmissionState = "FIELDS_COLLECTED"
	StateValidated       SubmissionState = "VALIDATED"
	StateUploading       SubmissionState = "UPLOADING"
	StateAppended        SubmissionState = "APPENDED"
	StateRejected        SubmissionState = "REJECTED"
	StateFailed          SubmissionState = "FAILED"
)

// Rejected is reachable from every state before the append because the
// validator may run before the account or remark resolved.
var stateTransitions = map[SubmissionState][]SubmissionState{
	StateEmpty:           {StateAccountResolved, StateRejected},
	StateAccountResolved: {StateRemarkSelected, StateRejected},
	StateRemarkSelected:  {StateFieldsCollected, StateRejected},
	StateFieldsCollected: {StateValidated, StateRejected},
	StateValidated:       {StateUploading, StateRejected, StateFailed},
	StateUploading:       {StateAppended, StateRejected, StateFailed},
}

func (s SubmissionState) Terminal() bool {
	return s == StateAppended || s == StateRejected || s == StateFailed
}

func (s SubmissionState) CanTransition(to SubmissionState) bool {
	for _, next := range stateTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Attachment is a raw evidence payload waiting to be uploaded.
type Attachment struct {
	Field       FieldName
	FileName    string
	ContentType string
	Data        []byte
}

// EvidenceLink is the durable reference returned by the evidence store.
type EvidenceLink struct {
	Field    FieldName `json:"field"`
	FileName string    `json:"fileName"`
	URL      string    `json:"url"`
}

// Submission is one technician's survey entry. It only lives for the request
// that carries it and is never stored before the row is appended.
type Submission struct {
	ID          string
	AccountID   string
	Account     *AccountRecord
	RemarkCode  string
	Mobile      string
	Text        map[FieldName]string
	Evidence    map[FieldName]string
	Attachments map[FieldName]Attachment
	SubmittedBy string
	Timestamp   time.Time
	State       SubmissionState
}

func NewSubmission(accountID, remarkCode, mobile string) *Submission {
	return &Submission{
		AccountID:   accountID,
		RemarkCode:  remarkCode,
		Mobile:      mobile,
		Text:        make(map[FieldName]string),
		Evidence:    make(map[FieldName]string),
		Attachments: make(map[FieldName]Attachment),
		State:       StateEmpty,
	}
}

// Advance moves the submission to the next state, refusing any transition
// that would skip a step.
func (s *Submission) Advance(to SubmissionState) error {
	if s.State == "" {
		s.State = StateEmpty
	}

	if !s.State.CanTransition(to) {
		return fmt.Errorf("invalid submission transition %s -> %s", s.State, to)
	}

	s.State = to
	return nil
}

func (s *Submission) SetLink(link EvidenceLink) {
	if s.Evidence == nil {
		s.Evidence = make(map[FieldName]string)
	}
	s.Evidence[link.Field] = link.URL
	delete(s.Attachments, link.Field)
}

// EvidenceObject is what an evidence store receives for one upload.
type EvidenceObject struct {
	AccountID   string
	Field       FieldName
	FileName    string
	ContentType string
	Data        []byte
}
