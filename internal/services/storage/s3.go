package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config holds connection settings for an S3-compatible bucket
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// S3Store uploads audio to an S3-compatible bucket.
// Tested against Wasabi, Backblaze and Minio style endpoints.
type S3Store struct {
	s3        *s3.S3
	bucket    string
	publicURL string
}

// NewS3Store connects to the configured bucket
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	creds := credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	s3Config := &aws.Config{
		Credentials:      creds,
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("creating s3 session: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
	}

	return &S3Store{
		s3:        s3.New(sess),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// SaveAudio uploads the audio object and returns its public URL
func (s *S3Store) SaveAudio(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("invalid audio filename %q", filename)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to upload empty audio file %q", filename)
	}

	_, err := s.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading audio to s3: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, filename), nil
}
