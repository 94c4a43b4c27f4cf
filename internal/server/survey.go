package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"fieldsurvey/internal"
	"fieldsurvey/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	maxTextPart = 64 << 10
	draftMaxAge = 6 * time.Hour
)

func (s *Service) handleGetSurveyStart(w http.ResponseWriter, r *http.Request) {
	data := &types.SurveyStartPageData{
		BasePageData: types.BasePageData{Title: "Field Survey"},
	}

	if err := s.renderTemplate(w, r, "page.survey.start", data); err != nil {
		s.logger.WithError(err).Error("failed to render survey start page")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetSurveyLookup(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("account_id"))

	acct, err := s.survey.Resolve(r.Context(), accountID)
	if err != nil {
		s.renderLookupMiss(w, r, accountID, err)
		return
	}

	http.Redirect(w, r, "/survey/account/"+url.PathEscape(acct.ID), http.StatusSeeOther)
}

// renderLookupMiss shows the identifier form again with nothing beyond it.
func (s *Service) renderLookupMiss(w http.ResponseWriter, r *http.Request, accountID string, err error) {
	data := &types.SurveyStartPageData{
		BasePageData: types.BasePageData{Title: "Field Survey"},
		AccountID:    accountID,
	}

	var serr *types.SurveyError
	switch {
	case types.IsKind(err, types.LookupMiss):
		data.NotFound = true
		data.Error = fmt.Sprintf("Account %s was not found.", accountID)
		s.renderStatus(w, r, http.StatusNotFound, "page.survey.start", data)
	case errors.As(err, &serr):
		data.Error = serr.Message
		s.renderStatus(w, r, http.StatusBadRequest, "page.survey.start", data)
	default:
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to resolve account")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetSurveyAccount(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("accountID")

	acct, err := s.survey.Resolve(r.Context(), accountID)
	if err != nil {
		s.renderLookupMiss(w, r, accountID, err)
		return
	}

	remark := strings.TrimSpace(r.URL.Query().Get("remark"))
	data := s.formPageData(acct, remark)

	if remark != "" && data.Remark == nil {
		data.FieldErrors[types.FieldRemark] = "Choose a remark from the list."
	}

	if data.Remark != nil {
		draft := s.readDraft(r)
		if draft.Matches(acct.ID, data.Remark.Code) {
			data.Fields = fieldViews(*data.Remark, nil, draft.Links, nil)
		}
	}

	if err := s.renderTemplate(w, r, "page.survey.form", data); err != nil {
		s.logger.WithError(err).Error("failed to render survey form")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostSurveyAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := r.PathValue("accountID")

	acct, err := s.survey.Resolve(ctx, accountID)
	if err != nil {
		s.renderLookupMiss(w, r, accountID, err)
		return
	}

	maxUpload := s.config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, int64(len(types.EvidenceFields))*maxUpload+(1<<20))

	upload, uploadErr := readSurveyUpload(r, maxUpload)

	var input types.SurveyForm
	if err := decoder.Decode(&input, upload.values); err != nil {
		s.logger.WithError(err).Error("failed to decode survey form")
		s.internalServerError(w)
		return
	}
	if input.RemarkCode == "" {
		input.RemarkCode = r.URL.Query().Get("remark")
	}

	if uploadErr != nil {
		s.renderUnreadableUpload(w, r, acct, &input, uploadErr)
		return
	}

	sub := types.NewSubmission(acct.ID, strings.TrimSpace(input.RemarkCode), strings.TrimSpace(input.Mobile))
	sub.SubmittedBy = s.userFromContext(ctx)
	for name, v := range input.TextValues() {
		sub.Text[name] = v
	}

	draft := s.readDraft(r)
	if draft.Matches(acct.ID, sub.RemarkCode) {
		for name, link := range draft.Links {
			sub.Evidence[name] = link
		}
	}

	for name, att := range upload.files {
		sub.Attachments[name] = att
	}

	res, err := s.survey.Submit(ctx, sub)
	if err == nil {
		s.clearDraft(w)

		v := url.Values{}
		v.Set("id", sub.ID)
		v.Set("account", sub.AccountID)
		v.Set("remark", sub.RemarkCode)
		http.Redirect(w, r, "/survey/submitted?"+v.Encode(), http.StatusSeeOther)
		return
	}

	entry := s.logger.WithFields(logrus.Fields{
		"account_id": sub.AccountID,
		"remark":     sub.RemarkCode,
		"state":      sub.State,
	})

	// keep whatever uploaded so a resubmit only sends what failed
	if res != nil && len(sub.Evidence) > 0 {
		if derr := s.writeDraft(w, &types.SurveyDraft{
			AccountID:  sub.AccountID,
			RemarkCode: sub.RemarkCode,
			Links:      sub.Evidence,
		}); derr != nil {
			entry.WithError(derr).Warn("failed to keep uploaded links")
		}
	}

	data := s.formPageData(acct, sub.RemarkCode)
	data.Mobile = sub.Mobile
	data.FieldErrors = fieldErrors(err)
	if data.Remark != nil {
		data.Fields = fieldViews(*data.Remark, sub.Text, sub.Evidence, data.FieldErrors)
	}

	status := http.StatusUnprocessableEntity
	kind, _ := types.KindOf(err)
	switch kind {
	case types.InputError, types.LookupMiss:
		data.Error = "Please fix the highlighted fields."
	case types.UploadError:
		status = http.StatusBadGateway
		data.Error = "Some files failed to upload. Files that uploaded are kept; attach the failed ones again and resubmit."
	case types.PersistenceError:
		status = http.StatusServiceUnavailable
		data.Error = errorMessage(err)
	default:
		entry.WithError(err).Error("unexpected survey submit error")
		s.internalServerError(w)
		return
	}

	entry.WithError(err).Info("survey submit did not complete")
	s.renderStatus(w, r, status, "page.survey.form", data)
}

func (s *Service) handleGetSurveySubmitted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &types.SubmittedPageData{
		BasePageData: types.BasePageData{Title: "Survey submitted"},
		SubmissionID: q.Get("id"),
		AccountID:    q.Get("account"),
		RemarkCode:   q.Get("remark"),
	}

	if err := s.renderTemplate(w, r, "page.submitted", data); err != nil {
		s.logger.WithError(err).Error("failed to render submitted page")
		s.internalServerError(w)
	}
}

func (s *Service) formPageData(acct *types.AccountRecord, remark string) *types.SurveyFormPageData {
	data := &types.SurveyFormPageData{
		BasePageData: types.BasePageData{Title: "Account " + acct.ID},
		Account:      acct,
		Remarks:      s.survey.Remarks(),
		RemarkCode:   strings.TrimSpace(remark),
		FieldErrors:  make(map[string]string),
		MaxUploadMB:  s.config.MaxUploadMB,
		AuthRequired: s.config.AuthEnabled(),
	}

	if def, ok := s.survey.Remark(remark); ok {
		data.Remark = &def
		data.RemarkCode = def.Code
		data.Fields = fieldViews(def, nil, nil, nil)
	}

	return data
}

// fieldViews renders exactly the fields def requires, in schema order.
func fieldViews(def types.RemarkDefinition, text map[types.FieldName]string, links map[types.FieldName]string, errs map[string]string) []types.SurveyFieldView {
	views := make([]types.SurveyFieldView, 0, len(def.Fields))
	for _, f := range def.Fields {
		v := types.SurveyFieldView{
			Name:       f.Name,
			Label:      f.Label(),
			IsEvidence: f.IsEvidence(),
			Error:      errs[string(f.Name)],
		}
		if f.IsEvidence() {
			v.Link = links[f.Name]
		} else {
			v.Value = text[f.Name]
		}
		views = append(views, v)
	}
	return views
}

func fieldErrors(err error) map[string]string {
	var verrs types.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.ByField()
	}

	out := make(map[string]string)
	var serr *types.SurveyError
	if errors.As(err, &serr) && serr.Field != "" {
		out[serr.Field] = serr.Message
	}
	return out
}

func errorMessage(err error) string {
	var serr *types.SurveyError
	if errors.As(err, &serr) {
		return serr.Message
	}
	return "Something went wrong, please try again."
}

// renderUnreadableUpload re-renders the form with whatever text arrived
// before the body could no longer be read.
func (s *Service) renderUnreadableUpload(w http.ResponseWriter, r *http.Request, acct *types.AccountRecord, input *types.SurveyForm, err error) {
	data := s.formPageData(acct, input.RemarkCode)
	data.Mobile = strings.TrimSpace(input.Mobile)
	if data.Remark != nil {
		var links map[types.FieldName]string
		if draft := s.readDraft(r); draft.Matches(acct.ID, data.Remark.Code) {
			links = draft.Links
		}
		data.Fields = fieldViews(*data.Remark, input.TextValues(), links, nil)
	}

	status := http.StatusRequestEntityTooLarge
	data.Error = fmt.Sprintf("The upload could not be read. Each file must be under %d MB.", s.config.MaxUploadMB)
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		status = http.StatusBadRequest
		data.Error = "The form was not sent as a file upload. Reload the page and try again."
	}

	s.logger.WithError(err).WithField("account_id", acct.ID).Info("failed to read survey form")
	s.renderStatus(w, r, status, "page.survey.form", data)
}

type surveyUpload struct {
	values url.Values
	files  map[types.FieldName]types.Attachment
}

// readSurveyUpload reads the multipart body part by part, so the values that
// arrived before a failure are still returned alongside the error. Files
// past maxBytes are cut off so the payload check reports them as too large.
func readSurveyUpload(r *http.Request, maxBytes int64) (*surveyUpload, error) {
	up := &surveyUpload{
		values: url.Values{},
		files:  make(map[types.FieldName]types.Attachment),
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return up, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return up, nil
		}
		if err != nil {
			return up, err
		}

		name := part.FormName()
		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxTextPart))
			_ = part.Close()
			if err != nil {
				return up, err
			}
			if name != "" {
				up.values.Add(name, string(value))
			}
			continue
		}

		field := types.FieldName(name)
		if _, seen := up.files[field]; seen || !slices.Contains(types.EvidenceFields, field) {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		_ = part.Close()
		if err != nil {
			return up, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(data) == 0 {
			continue
		}

		up.files[field] = types.Attachment{
			Field:       field,
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		}
	}
}

func (s *Service) readDraft(r *http.Request) *types.SurveyDraft {
	cookie, err := r.Cookie(internal.COOKIE_SURVEY_DRAFT_NAME)
	if err != nil {
		return nil
	}

	draft := new(types.SurveyDraft)
	if err := s.cookie.Decode(internal.COOKIE_SURVEY_DRAFT_NAME, cookie.Value, draft); err != nil {
		s.logger.WithError(err).Debug("discarding unreadable survey draft")
		return nil
	}
	return draft
}

func (s *Service) writeDraft(w http.ResponseWriter, draft *types.SurveyDraft) error {
	encoded, err := s.cookie.Encode(internal.COOKIE_SURVEY_DRAFT_NAME, draft)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SURVEY_DRAFT_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/survey",
		MaxAge:   int(draftMaxAge.Seconds()),
	})
	return nil
}

func (s *Service) clearDraft(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_SURVEY_DRAFT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/survey",
		MaxAge:   -1,
	})
}
