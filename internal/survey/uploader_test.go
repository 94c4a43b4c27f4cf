package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fieldsurvey/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedUploader(store EvidenceStore) *Uploader {
	u := NewUploader(store, 1<<20)
	u.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 5, 6, 123456000, time.UTC)
	}
	return u
}

func TestUploader_FileName(t *testing.T) {
	u := fixedUploader(&memoryStore{})
	u.suffix = func() string { return "abcd1234" }

	name := u.FileName("12345", types.FieldMeterImage, ".jpg")
	assert.Equal(t, "12345_meter_image_20240309-140506.123456_abcd1234.jpg", name)
}

func TestUploader_FileNamesDoNotCollide(t *testing.T) {
	u := fixedUploader(&memoryStore{})

	seen := make(map[string]bool)
	for range 200 {
		name := u.FileName("12345", types.FieldMeterImage, ".jpg")
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestUploader_RejectsCorruptPayloadWithoutUploading(t *testing.T) {
	store := &memoryStore{}
	u := fixedUploader(store)

	png := pngBytes(t)
	_, err := u.Upload(context.Background(), "12345", types.Attachment{
		Field: types.FieldMeterImage,
		Data:  png[:len(png)-20],
	})

	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.UploadError))
	assert.True(t, errors.Is(err, ErrCorruptPayload))
	assert.Equal(t, 0, store.count())
}

func TestUploader_TransportFailureIsReported(t *testing.T) {
	store := &memoryStore{fail: map[types.FieldName]error{
		types.FieldMeterImage: errors.New("connection reset"),
	}}
	u := fixedUploader(store)

	link, err := u.Upload(context.Background(), "12345", types.Attachment{
		Field: types.FieldMeterImage,
		Data:  pngBytes(t),
	})

	require.Error(t, err)
	assert.Empty(t, link.URL)

	var serr *types.SurveyError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, types.UploadError, serr.Kind)
	assert.Equal(t, string(types.FieldMeterImage), serr.Field)
	assert.Contains(t, serr.Error(), "connection reset")
}

func TestUploader_StoresDetectedContentType(t *testing.T) {
	store := &memoryStore{}
	u := fixedUploader(store)

	link, err := u.Upload(context.Background(), "12345", types.Attachment{
		Field:       types.FieldDocument,
		ContentType: "image/png",
		Data:        pdfBytes(),
	})
	require.NoError(t, err)

	require.Len(t, store.objects, 1)
	obj := store.objects[0]
	assert.Equal(t, MimePDF, obj.ContentType)
	assert.True(t, strings.HasSuffix(obj.FileName, ".pdf"))
	assert.Equal(t, "https://files.test/"+obj.FileName, link.URL)
	assert.Equal(t, "12345", obj.AccountID)
}

func TestUploader_RetryProducesNewLinkAndKeepsOthers(t *testing.T) {
	store := &memoryStore{}
	u := fixedUploader(store)
	ctx := context.Background()

	sub := types.NewSubmission("12345", RemarkMeterDefective, "9876543210")
	image := pngBytes(t)

	premises, err := u.Upload(ctx, "12345", types.Attachment{Field: types.FieldPremisesImage, Data: image})
	require.NoError(t, err)
	sub.SetLink(premises)

	first, err := u.Upload(ctx, "12345", types.Attachment{Field: types.FieldMeterImage, Data: image})
	require.NoError(t, err)
	sub.SetLink(first)

	second, err := u.Upload(ctx, "12345", types.Attachment{Field: types.FieldMeterImage, Data: image})
	require.NoError(t, err)
	sub.SetLink(second)

	assert.NotEqual(t, first.URL, second.URL)
	assert.Equal(t, second.URL, sub.Evidence[types.FieldMeterImage])
	assert.Equal(t, premises.URL, sub.Evidence[types.FieldPremisesImage])
	assert.Equal(t, 3, store.count())
}

func TestUploader_UploadAllKeepsSuccessfulLinks(t *testing.T) {
	store := &memoryStore{fail: map[types.FieldName]error{
		types.FieldPremisesImage: errors.New("quota exceeded"),
	}}
	u := fixedUploader(store)
	def, _ := DefaultSchema().Definition(RemarkMeterDefective)

	attachments := map[types.FieldName]types.Attachment{
		types.FieldMeterImage:    {Data: pngBytes(t)},
		types.FieldPremisesImage: {Data: jpegBytes(t)},
		// not required by the remark, never uploaded
		types.FieldDocument: {Data: pdfBytes()},
	}

	links, err := u.UploadAll(context.Background(), "12345", def, attachments)

	require.Len(t, links, 1)
	assert.Equal(t, types.FieldMeterImage, links[0].Field)

	verrs := validationErrors(t, err)
	require.Len(t, verrs, 1)
	assert.Equal(t, types.UploadError, verrs[0].Kind)
	assert.Equal(t, string(types.FieldPremisesImage), verrs[0].Field)
	assert.Equal(t, 1, store.count())
}

func TestUploader_UploadAllConcurrentFields(t *testing.T) {
	store := &memoryStore{}
	u := NewUploader(store, 1<<20)
	def, err := NewSchema(types.RemarkDefinition{Code: "ALL", Fields: []types.FieldSpec{
		evidence(types.FieldMeterImage),
		evidence(types.FieldPremisesImage),
		evidence(types.FieldDocument),
	}})
	require.NoError(t, err)
	all, _ := def.Definition("ALL")

	attachments := map[types.FieldName]types.Attachment{
		types.FieldMeterImage:    {Data: pngBytes(t)},
		types.FieldPremisesImage: {Data: jpegBytes(t)},
		types.FieldDocument:      {Data: pdfBytes()},
	}

	links, err := u.UploadAll(context.Background(), "24680", all, attachments)
	require.NoError(t, err)
	require.Len(t, links, 3)

	for i, f := range all.Fields {
		assert.Equal(t, f.Name, links[i].Field)
		assert.True(t, strings.HasPrefix(links[i].FileName, fmt.Sprintf("24680_%s_", f.Name)))
	}
}
