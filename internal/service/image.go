package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/recipesmith/backend/config"
)

// S3API is the slice of the S3 client the image pipeline uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// ImageService handles dish image generation and storage.
type ImageService struct {
	apiKey string
	apiURL string
	s3     S3API
	bucket string
	region string
	client *http.Client
	logger *zap.Logger
}

// NewImageService creates a new ImageService instance.
func NewImageService(cfg *config.Config, storage *config.S3Config, logger *zap.Logger) *ImageService {
	return &ImageService{
		apiKey: cfg.GoogleAPIKey,
		apiURL: cfg.GeminiAPIURL,
		s3:     storage.Client,
		bucket: storage.BucketName,
		region: storage.Region,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

type imageRequest struct {
	Contents []imageContent `json:"contents"`
}

type imageContent struct {
	Parts []imagePart `json:"parts"`
}

type imagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

type imageResponse struct {
	Candidates []struct {
		Content struct {
			Parts []imagePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateImage sends the image description to the generation endpoint
// and returns the base64-encoded image payload. The inline payload is
// located by scanning for the part that actually carries inline data,
// not by position, so provider response-shape changes stay harmless.
func (s *ImageService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload := imageRequest{
		Contents: []imageContent{{Parts: []imagePart{{Text: prompt}}}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknown, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknown, err)
	}

	if resp.StatusCode == http.StatusOK {
		var result imageResponse
		if err := json.Unmarshal(body, &result); err != nil {
			s.logger.Warn("image response did not parse", zap.Error(err))
			return "", ErrDecoding
		}

		for _, candidate := range result.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.InlineData != nil && part.InlineData.Data != "" {
					return part.InlineData.Data, nil
				}
			}
		}
		return "", ErrMissingData
	}

	// Surface the provider's own error envelope in the logs only.
	var errEnvelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errEnvelope); err == nil && errEnvelope.Error.Message != "" {
		s.logger.Warn("image generation failed",
			zap.Int("status", resp.StatusCode),
			zap.String("message", errEnvelope.Error.Message))
	} else {
		s.logger.Warn("image generation failed",
			zap.Int("status", resp.StatusCode))
	}

	return "", ErrUnknown
}

// UploadImage stores raw image bytes under the given key and returns the
// public URL.
func (s *ImageService) UploadImage(ctx context.Context, imageData []byte, fileName string) (string, error) {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, fileName)
	s.logger.Info("uploaded image", zap.String("url", publicURL))
	return publicURL, nil
}

// DeleteImage removes a stored image. Callers treat deletion as
// best-effort cleanup: a failure must never block the user action that
// triggered it.
func (s *ImageService) DeleteImage(ctx context.Context, fileName string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileName),
	})
	return err
}

// ClearBucket lists and deletes every object in the bucket, following
// continuation tokens so buckets beyond one listing page empty fully.
func (s *ImageService) ClearBucket(ctx context.Context) error {
	var token *string
	for {
		out, err := s.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("failed to list bucket: %w", err)
		}

		if len(out.Contents) > 0 {
			objects := make([]types.ObjectIdentifier, 0, len(out.Contents))
			for _, obj := range out.Contents {
				objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
			}

			_, err = s.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: objects},
			})
			if err != nil {
				return fmt.Errorf("failed to clear bucket: %w", err)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			return nil
		}
		token = out.NextContinuationToken
	}
}
