package survey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fieldsurvey/internal/utils"
	"fieldsurvey/pkg/types"

	"golang.org/x/sync/errgroup"
)

const (
	fileNameTimeLayout = "20060102-150405.000000"
	fileNameSuffixSize = 8
	uploadConcurrency  = 3
)

// EvidenceStore persists one evidence file and returns a shareable link.
type EvidenceStore interface {
	Put(ctx context.Context, obj types.EvidenceObject) (string, error)
}

type Uploader struct {
	store    EvidenceStore
	maxBytes int64

	now    func() time.Time
	suffix func() string
}

func NewUploader(store EvidenceStore, maxBytes int64) *Uploader {
	return &Uploader{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		suffix: func() string {
			return utils.NanoIDSize(fileNameSuffixSize)
		},
	}
}

// FileName derives the stored name from account, field and upload time at
// microsecond resolution. The random suffix keeps two uploads within the
// same microsecond apart.
func (u *Uploader) FileName(accountID string, field types.FieldName, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s%s",
		accountID,
		field,
		u.now().UTC().Format(fileNameTimeLayout),
		u.suffix(),
		ext,
	)
}

// Upload checks that att decodes as a supported format and stores it. A
// payload that fails the check is never sent to the store.
func (u *Uploader) Upload(ctx context.Context, accountID string, att types.Attachment) (types.EvidenceLink, error) {
	link, err := u.upload(ctx, accountID, att)
	if err != nil {
		return types.EvidenceLink{}, err
	}
	return link, nil
}

func (u *Uploader) upload(ctx context.Context, accountID string, att types.Attachment) (types.EvidenceLink, *types.SurveyError) {
	mime, ext, err := CheckPayload(att.Data, u.maxBytes)
	if err != nil {
		return types.EvidenceLink{}, types.NewUploadError(att.Field,
			fmt.Sprintf("%s could not be accepted, please upload it again.", att.Field.Label()), err)
	}

	name := u.FileName(accountID, att.Field, ext)

	url, err := u.store.Put(ctx, types.EvidenceObject{
		AccountID:   accountID,
		Field:       att.Field,
		FileName:    name,
		ContentType: mime,
		Data:        att.Data,
	})
	if err != nil {
		return types.EvidenceLink{}, types.NewUploadError(att.Field,
			fmt.Sprintf("%s upload failed, please try again.", att.Field.Label()), err)
	}
	if url == "" {
		return types.EvidenceLink{}, types.NewUploadError(att.Field,
			fmt.Sprintf("%s upload returned no link, please try again.", att.Field.Label()), nil)
	}

	return types.EvidenceLink{Field: att.Field, FileName: name, URL: url}, nil
}

// UploadAll uploads the attachments for def's evidence fields independently
// and waits for every one to finish. It returns the links that succeeded,
// in field order, and the per-field failures as types.ValidationErrors.
func (u *Uploader) UploadAll(ctx context.Context, accountID string, def types.RemarkDefinition, attachments map[types.FieldName]types.Attachment) ([]types.EvidenceLink, error) {
	type result struct {
		link types.EvidenceLink
		err  *types.SurveyError
		done bool
	}

	fields := def.EvidenceFields()
	results := make([]result, len(fields))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(uploadConcurrency)

	for i, f := range fields {
		att, ok := attachments[f.Name]
		if !ok {
			continue
		}
		att.Field = f.Name

		g.Go(func() error {
			link, err := u.upload(ctx, accountID, att)

			mu.Lock()
			defer mu.Unlock()
			results[i] = result{link: link, err: err, done: true}
			return nil
		})
	}
	_ = g.Wait()

	links := make([]types.EvidenceLink, 0, len(fields))
	var errs types.ValidationErrors
	for _, r := range results {
		if !r.done {
			continue
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		links = append(links, r.link)
	}

	if len(errs) > 0 {
		return links, errs
	}
	return links, nil
}
