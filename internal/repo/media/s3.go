package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/chatterbox-im/chatterbox/internal/config"
	"github.com/chatterbox-im/chatterbox/internal/models"
)

// Store uploads message attachments to the external media host and returns
// their permanent public URL.
type Store interface {
	Upload(ctx context.Context, payload *models.MediaPayload) (string, error)
	Delete(ctx context.Context, mediaURL string) error
}

type s3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	bucket     string
	region     string
	publicHost string
}

func NewS3Store(ctx context.Context, conf *config.Config) (Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(conf.Media.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &s3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		bucket:     conf.Media.Bucket,
		region:     conf.Media.Region,
		publicHost: conf.Media.PublicHost,
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, payload *models.MediaPayload) (string, error) {
	ext := extensionOf(payload.ContentType)
	key := path.Join(payload.Folder(), uuid.NewString()+ext)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload.Data),
		ContentType: aws.String(payload.ContentType),
	})
	if err != nil {
		return "", models.Upstreamf("media upload failed: %v", err)
	}

	return s.publicURL(key), nil
}

func (s *s3Store) Delete(ctx context.Context, mediaURL string) error {
	key, err := s.keyOf(mediaURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return models.Upstreamf("media delete failed: %v", err)
	}
	return nil
}

func (s *s3Store) publicURL(key string) string {
	if s.publicHost != "" {
		return fmt.Sprintf("https://%s/%s", s.publicHost, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *s3Store) keyOf(mediaURL string) (string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("unescape media key: %w", err)
	}
	return key, nil
}

func extensionOf(contentType string) string {
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}
