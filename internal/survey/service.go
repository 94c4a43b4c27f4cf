// Package survey validates field-survey submissions, uploads their evidence
// and appends them to the shared table.
package survey

import (
	"context"
	"strings"
	"time"

	"fieldsurvey/internal/utils"
	"fieldsurvey/pkg/types"

	"github.com/sirupsen/logrus"
)

// Deps are the collaborators a Service is built from.
type Deps struct {
	Logger         *logrus.Logger
	Accounts       AccountResolver
	Schema         *Schema
	Evidence       EvidenceStore
	Appender       RowAppender
	MaxUploadBytes int64
	Location       *time.Location
}

type Service struct {
	logger    *logrus.Logger
	accounts  AccountResolver
	schema    *Schema
	validator *Validator
	uploader  *Uploader
	appender  RowAppender
	location  *time.Location

	now func() time.Time
}

// Result is what a submit attempt produced. Links holds every evidence link
// that uploaded, including on a failed attempt, so the caller can keep them.
type Result struct {
	Submission *types.Submission
	Links      []types.EvidenceLink
	Row        []string
}

func New(d Deps) *Service {
	if d.Schema == nil {
		d.Schema = DefaultSchema()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}

	return &Service{
		logger:    d.Logger,
		accounts:  d.Accounts,
		schema:    d.Schema,
		validator: NewValidator(d.Accounts),
		uploader:  NewUploader(d.Evidence, d.MaxUploadBytes),
		appender:  d.Appender,
		location:  d.Location,
		now:       time.Now,
	}
}

func (s *Service) Resolve(_ context.Context, id string) (*types.AccountRecord, error) {
	return s.accounts.Lookup(strings.TrimSpace(id))
}

func (s *Service) Remarks() []types.RemarkDefinition {
	return s.schema.Definitions()
}

func (s *Service) Remark(code string) (types.RemarkDefinition, bool) {
	return s.schema.Definition(code)
}

func (s *Service) Probe(ctx context.Context) error {
	if err := s.appender.Probe(ctx); err != nil {
		return types.NewPersistenceError("The survey sheet is unreachable right now, please try again.", err)
	}
	return nil
}

// Submit walks sub through validation, evidence upload, strict validation
// and the append. Every failure is returned as a typed survey error; the
// submission is only complete when the appender confirmed the row.
func (s *Service) Submit(ctx context.Context, sub *types.Submission) (*Result, error) {
	res := &Result{Submission: sub}
	if sub.State == "" {
		sub.State = types.StateEmpty
	}

	entry := s.logger.WithFields(logrus.Fields{
		"account_id": sub.AccountID,
		"remark":     sub.RemarkCode,
	})

	if acct, err := s.accounts.Lookup(sub.AccountID); err == nil {
		sub.Account = acct
		if err := sub.Advance(types.StateAccountResolved); err != nil {
			return res, err
		}
	}

	var def *types.RemarkDefinition
	if d, ok := s.schema.Definition(sub.RemarkCode); ok && sub.Account != nil {
		def = &d
		sub.RemarkCode = d.Code
		if err := sub.Advance(types.StateRemarkSelected); err != nil {
			return res, err
		}

		collect(sub)
		if err := sub.Advance(types.StateFieldsCollected); err != nil {
			return res, err
		}
	} else if ok {
		def = &d
	}

	if err := s.validator.Validate(sub, def, PendingUploads); err != nil {
		_ = sub.Advance(types.StateRejected)
		entry.WithField("fields", fieldsOf(err)).Info("submission rejected")
		return res, err
	}
	if err := sub.Advance(types.StateValidated); err != nil {
		return res, err
	}

	if err := s.Probe(ctx); err != nil {
		_ = sub.Advance(types.StateFailed)
		entry.WithError(err).Error("record appender probe failed")
		return res, err
	}

	if err := sub.Advance(types.StateUploading); err != nil {
		return res, err
	}

	links, err := s.uploader.UploadAll(ctx, sub.AccountID, *def, sub.Attachments)
	for _, link := range links {
		sub.SetLink(link)
	}
	res.Links = links
	if err != nil {
		_ = sub.Advance(types.StateFailed)
		entry.WithError(err).Error("evidence upload failed")
		return res, err
	}

	if err := s.validator.Validate(sub, def, Strict); err != nil {
		_ = sub.Advance(types.StateRejected)
		entry.WithField("fields", fieldsOf(err)).Warn("submission missing evidence links after upload")
		return res, err
	}

	if sub.ID == "" {
		sub.ID = utils.NanoID()
	}
	sub.Timestamp = s.now()

	row := BuildRow(sub, *def, s.location)
	if err := s.appender.Append(ctx, row); err != nil {
		_ = sub.Advance(types.StateFailed)
		entry.WithError(err).Error("failed to append survey row")
		return res, types.NewPersistenceError("The survey could not be saved, please submit again.", err)
	}
	res.Row = row

	if err := sub.Advance(types.StateAppended); err != nil {
		return res, err
	}

	entry.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"evidence":      len(links),
	}).Info("survey row appended")

	return res, nil
}

// collect trims the text inputs in place.
func collect(sub *types.Submission) {
	for name, v := range sub.Text {
		sub.Text[name] = strings.TrimSpace(v)
	}
	for name, att := range sub.Attachments {
		if len(att.Data) == 0 {
			delete(sub.Attachments, name)
		}
	}
}

func fieldsOf(err error) []string {
	if verrs, ok := err.(types.ValidationErrors); ok {
		return verrs.Fields()
	}
	return nil
}
