package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cardfeed/backend/internal/util"
)

// MaxImageSize bounds a single upload
const MaxImageSize = 5 << 20

// ImageKind selects the key prefix for an upload
type ImageKind string

const (
	KindPost    ImageKind = "posts"
	KindProfile ImageKind = "profiles"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrEmptyImage       = errors.New("empty image")
)

// objectAPI is the subset of the S3 client the uploader uses
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Uploader handles image uploads to AWS S3
type S3Uploader struct {
	client  objectAPI
	bucket  string
	region  string
	baseURL string
	now     func() time.Time
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Bucket      string `json:"bucket"`
	Region      string `json:"region"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// NewS3Uploader creates a new S3 uploader. baseURL is the public prefix
// (usually a CDN) that object keys are appended to.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return newS3Uploader(s3.NewFromConfig(cfg), region, bucket, baseURL), nil
}

func newS3Uploader(client objectAPI, region, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// UploadImage stores an image under images/{kind}/{year}/{month}/{userID}/{id}{ext}
func (u *S3Uploader) UploadImage(ctx context.Context, data []byte, filename, userID string, kind ImageKind) (*UploadResult, error) {
	contentType, ok := util.ImageContentType(filename)
	if !ok {
		return nil, ErrUnsupportedImage
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyImage
	case len(data) > MaxImageSize:
		return nil, ErrImageTooLarge
	}
	if kind == "" {
		kind = KindPost
	}

	now := u.now().UTC()
	key := fmt.Sprintf("images/%s/%d/%02d/%s/%s%s",
		kind, now.Year(), now.Month(), userID, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),

		// Keys are unique per upload so objects never change
		CacheControl: aws.String("public, max-age=31536000, immutable"),

		Metadata: map[string]string{
			"user-id":           userID,
			"original-filename": filepath.Base(filename),
			"upload-timestamp":  now.Format(time.RFC3339),
			"image-kind":        string(kind),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         u.baseURL + "/" + key,
		Bucket:      u.bucket,
		Region:      u.region,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// DeleteFile deletes a file from S3
func (u *S3Uploader) DeleteFile(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}
