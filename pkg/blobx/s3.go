package blobx

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/Abraxas-365/formscan/pkg/errx"
	"github.com/Abraxas-365/formscan/pkg/ptrx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	errorRegistry = errx.NewRegistry("BLOB")

	ErrUploadFailed = errorRegistry.Register(
		"UPLOAD_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to upload object to scratch storage",
	)

	ErrDeleteFailed = errorRegistry.Register(
		"DELETE_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to delete object from scratch storage",
	)
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on an S3 bucket under a temp/ prefix.
type S3Store struct {
	api    s3API
	bucket string
}

// NewS3Store creates an S3-backed scratch store.
func NewS3Store(cfg aws.Config, bucket string) *S3Store {
	return &S3Store{api: s3.NewFromConfig(cfg), bucket: bucket}
}

// NewS3StoreFromAPI creates a store with a caller-supplied API, for tests.
func NewS3StoreFromAPI(api s3API, bucket string) *S3Store {
	return &S3Store{api: api, bucket: bucket}
}

// Bucket returns the bucket the store writes to.
func (s *S3Store) Bucket() string {
	return s.bucket
}

func (s *S3Store) Put(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := fmt.Sprintf("temp/%s-%s", uuid.NewString(), filename)

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      ptrx.String(s.bucket),
		Key:         ptrx.String(key),
		Body:        bytes.NewReader(data),
		ContentType: ptrx.String(contentType),
	})
	if err != nil {
		return "", errorRegistry.NewWithCause(ErrUploadFailed, err)
	}
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: ptrx.String(s.bucket),
		Key:    ptrx.String(key),
	})
	if err != nil {
		return errorRegistry.NewWithCause(ErrDeleteFailed, err)
	}
	return nil
}
