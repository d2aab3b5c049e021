package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	putKeys        []string
	putContentType string
	deletedKeys    []string
	listKeys       []string
	listPageSize   int
	bulkDeleted    []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putKeys = append(f.putKeys, aws.ToString(params.Key))
	f.putContentType = aws.ToString(params.ContentType)
	_, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletedKeys = append(f.deletedKeys, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	start := 0
	if params.ContinuationToken != nil {
		var err error
		start, err = strconv.Atoi(aws.ToString(params.ContinuationToken))
		if err != nil {
			return nil, err
		}
	}

	end := len(f.listKeys)
	if f.listPageSize > 0 && start+f.listPageSize < end {
		end = start + f.listPageSize
	}

	out := &s3.ListObjectsV2Output{}
	for _, key := range f.listKeys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	if end < len(f.listKeys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, obj := range params.Delete.Objects {
		f.bulkDeleted = append(f.bulkDeleted, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func newTestImageService(apiURL string, store *fakeS3) *ImageService {
	return &ImageService{
		apiKey: "test-key",
		apiURL: apiURL,
		s3:     store,
		bucket: "test-bucket",
		region: "us-east-1",
		client: &http.Client{Timeout: 5 * time.Second},
		logger: zap.NewNop(),
	}
}

func TestGenerateImageFindsInlineDataByType(t *testing.T) {
	// The inline payload sits behind a text part; position must not
	// matter.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [
					{"text": "Here is your image."},
					{"inlineData": {"mimeType": "image/png", "data": "aGVsbG8="}}
				]}
			}]
		}`))
	}))
	defer srv.Close()

	data, err := newTestImageService(srv.URL, &fakeS3{}).GenerateImage(context.Background(), "a bowl of soup")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", data)
}

func TestGenerateImageInlineDataFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [
					{"inlineData": {"mimeType": "image/png", "data": "aGVsbG8="}}
				]}
			}]
		}`))
	}))
	defer srv.Close()

	data, err := newTestImageService(srv.URL, &fakeS3{}).GenerateImage(context.Background(), "a bowl of soup")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", data)
}

func TestGenerateImageNoInlineData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "no image for you"}]}
			}]
		}`))
	}))
	defer srv.Close()

	_, err := newTestImageService(srv.URL, &fakeS3{}).GenerateImage(context.Background(), "a bowl of soup")
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestGenerateImageMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`garbage`))
	}))
	defer srv.Close()

	_, err := newTestImageService(srv.URL, &fakeS3{}).GenerateImage(context.Background(), "a bowl of soup")
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestGenerateImageErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "prompt blocked"}}`))
	}))
	defer srv.Close()

	_, err := newTestImageService(srv.URL, &fakeS3{}).GenerateImage(context.Background(), "a bowl of soup")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestUploadImage(t *testing.T) {
	store := &fakeS3{}
	svc := newTestImageService("http://unused", store)

	url, err := svc.UploadImage(context.Background(), []byte("png bytes"), "Green_Curry_ab12cd34.png")
	require.NoError(t, err)

	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/Green_Curry_ab12cd34.png", url)
	assert.Equal(t, []string{"Green_Curry_ab12cd34.png"}, store.putKeys)
	assert.Equal(t, "image/png", store.putContentType)
}

func TestDeleteImage(t *testing.T) {
	store := &fakeS3{}
	svc := newTestImageService("http://unused", store)

	require.NoError(t, svc.DeleteImage(context.Background(), "old.png"))
	assert.Equal(t, []string{"old.png"}, store.deletedKeys)
}

func TestClearBucket(t *testing.T) {
	store := &fakeS3{listKeys: []string{"a.png", "b.png"}}
	svc := newTestImageService("http://unused", store)

	require.NoError(t, svc.ClearBucket(context.Background()))
	assert.Equal(t, []string{"a.png", "b.png"}, store.bulkDeleted)
}

func TestClearBucketFollowsPagination(t *testing.T) {
	store := &fakeS3{
		listKeys:     []string{"a.png", "b.png", "c.png", "d.png", "e.png"},
		listPageSize: 2,
	}
	svc := newTestImageService("http://unused", store)

	require.NoError(t, svc.ClearBucket(context.Background()))
	assert.Equal(t, []string{"a.png", "b.png", "c.png", "d.png", "e.png"}, store.bulkDeleted)
}

func TestClearBucketEmpty(t *testing.T) {
	store := &fakeS3{}
	svc := newTestImageService("http://unused", store)

	require.NoError(t, svc.ClearBucket(context.Background()))
	assert.Empty(t, store.bulkDeleted)
}
