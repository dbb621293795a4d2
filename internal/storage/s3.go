package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrMissingBucket is returned when the store was built without a bucket name.
var ErrMissingBucket = errors.New("storage: bucket name is required")

// PutObjectAPI is the subset of the S3 client used by S3Store.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads generated images into a single bucket and hands out the
// virtual-hosted style public URL of every object.
type S3Store struct {
	client PutObjectAPI
	bucket string
	region string
}

// NewS3Store wires an S3 client with the target bucket. An empty bucket is
// accepted; Validate reports it on every request instead.
func NewS3Store(client PutObjectAPI, bucket, region string) *S3Store {
	return &S3Store{
		client: client,
		bucket: strings.TrimSpace(bucket),
		region: strings.TrimSpace(region),
	}
}

// Validate reports whether uploads can be attempted.
func (s *S3Store) Validate() error {
	if s == nil || s.client == nil {
		return errors.New("storage: no s3 client configured")
	}
	if s.bucket == "" {
		return ErrMissingBucket
	}
	return nil
}

// Put uploads obj and returns its public URL.
func (s *S3Store) Put(ctx context.Context, obj Object) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	key, err := sanitizeKey(obj.Key)
	if err != nil {
		return "", err
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL returns the public address of key inside the bucket.
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, strings.TrimLeft(key, "/"))
}
