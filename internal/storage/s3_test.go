package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"fieldsurvey/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "survey-evidence", "/evidence/", "")

	link, err := store.Put(context.Background(), types.EvidenceObject{
		AccountID:   "12345",
		Field:       types.FieldMeterImage,
		FileName:    "12345_meter_image_x.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://survey-evidence.s3.amazonaws.com/evidence/12345/12345_meter_image_x.jpg", link)
	assert.Equal(t, "evidence/12345/12345_meter_image_x.jpg", aws.ToString(client.input.Key))
	assert.Equal(t, "survey-evidence", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(client.input.ContentType))
	assert.Equal(t, int64(10), aws.ToInt64(client.input.ContentLength))
	assert.Equal(t, []byte("jpeg-bytes"), client.body)
	assert.Equal(t, "meter_image", client.input.Metadata["field"])
}

func TestS3Store_PutCustomBaseURL(t *testing.T) {
	store := NewS3Store(&fakeS3{}, "bucket", "", "https://cdn.example.com/")

	link, err := store.Put(context.Background(), types.EvidenceObject{AccountID: "1", FileName: "f.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/1/f.png", link)
}

func TestS3Store_PutError(t *testing.T) {
	store := NewS3Store(&fakeS3{err: errors.New("access denied")}, "bucket", "", "")

	link, err := store.Put(context.Background(), types.EvidenceObject{AccountID: "1", FileName: "f.png"})
	require.Error(t, err)
	assert.Empty(t, link)
	assert.Contains(t, err.Error(), "access denied")
}
