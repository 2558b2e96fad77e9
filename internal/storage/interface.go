package storage

import "context"

// ImageUploader defines the interface for storing post and profile images.
// This interface allows for easy mocking in tests
type ImageUploader interface {
	UploadImage(ctx context.Context, data []byte, filename, userID string, kind ImageKind) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

// Ensure S3Uploader implements ImageUploader
var _ ImageUploader = (*S3Uploader)(nil)
