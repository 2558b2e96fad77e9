package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.err
}

func newTestUploader(client *fakeS3) *S3Uploader {
	u := newS3Uploader(client, "us-east-1", "cardfeed-test", "https://cdn.example.com/")
	u.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return u
}

func TestUploadImage(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client)

	res, err := u.UploadImage(context.Background(), []byte("png-bytes"), "Cover.PNG", "user-1", KindPost)
	require.NoError(t, err)

	assert.Regexp(t, `^images/posts/2026/03/user-1/[0-9a-f-]{36}\.png$`, res.Key)
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.EqualValues(t, 9, res.Size)

	require.Len(t, client.puts, 1)
	assert.Equal(t, "cardfeed-test", aws.ToString(client.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.puts[0].ContentType))
	assert.Equal(t, "user-1", client.puts[0].Metadata["user-id"])
	assert.Equal(t, []byte("png-bytes"), client.bodies[0])
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	u := newTestUploader(&fakeS3{})
	ctx := context.Background()

	_, err := u.UploadImage(ctx, []byte("x"), "doc.pdf", "u", KindProfile)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = u.UploadImage(ctx, nil, "a.jpg", "u", KindProfile)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = u.UploadImage(ctx, make([]byte, MaxImageSize+1), "a.jpg", "u", KindProfile)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestUploadImageWrapsClientError(t *testing.T) {
	boom := errors.New("access denied")
	u := newTestUploader(&fakeS3{err: boom})

	_, err := u.UploadImage(context.Background(), []byte("x"), "a.gif", "u", KindPost)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, u.CheckBucketAccess(context.Background()), boom)
}

func TestDeleteFile(t *testing.T) {
	client := &fakeS3{}
	u := newTestUploader(client)
	require.NoError(t, u.DeleteFile(context.Background(), "images/posts/k.png"))
	assert.Equal(t, []string{"images/posts/k.png"}, client.deletes)
}
