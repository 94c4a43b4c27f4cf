package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"fieldsurvey/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the part of the S3 client the evidence store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads evidence to an S3 bucket under <prefix>/<account>/.
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Store creates a store for bucket. Links are built from baseURL, or
// the bucket's virtual-hosted URL when baseURL is empty.
func NewS3Store(client S3API, bucket, prefix, baseURL string) *S3Store {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}

	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *S3Store) Key(obj types.EvidenceObject) string {
	return path.Join(s.prefix, obj.AccountID, obj.FileName)
}

// Put writes the object and returns its public URL
func (s *S3Store) Put(ctx context.Context, obj types.EvidenceObject) (string, error) {
	key := s.Key(obj)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		Metadata: map[string]string{
			"account-id": obj.AccountID,
			"field":      string(obj.Field),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put s3 object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}
