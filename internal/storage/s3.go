package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"measure-error/internal/retry"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/xerrors"
)

type s3Storage struct {
	client *s3.Client
	config S3Config
}

type S3Config struct {
	Bucket string
	// EndpointURL overrides the AWS endpoint, e.g. for MinIO.
	EndpointURL string
}

func NewS3Storage(ctx context.Context, s S3Config) (Storage, error) {
	if s.Bucket == "" {
		return nil, xerrors.New("S3 bucket is not specified")
	}

	httpClient := &http.Client{
		Transport: &retry.Transport{
			Base:    http.DefaultTransport,
			Backoff: retry.NewExponential(50*time.Millisecond, 2*time.Second, 3, nil),
			Policy:  retry.DefaultPolicy(),
		},
	}

	c, err := config.LoadDefaultConfig(ctx, config.WithHTTPClient(httpClient))
	if err != nil {
		return nil, xerrors.Errorf("failed to load AWS config: %w", err)
	}
	s3Client := s3.NewFromConfig(c, func(o *s3.Options) {
		o.UsePathStyle = true
		if s.EndpointURL != "" {
			o.BaseEndpoint = aws.String(s.EndpointURL)
		}
	})

	return &s3Storage{
		client: s3Client,
		config: s,
	}, nil
}

func (s *s3Storage) Put(ctx context.Context, key string, data []byte) (string, error) {
	contentType := http.DetectContentType(data)

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", xerrors.Errorf("failed to upload to S3: %w", err)
	}

	return s.URL(key), nil
}

func (s *s3Storage) Get(ctx context.Context, url string) ([]byte, error) {
	key, err := s.key(url)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, xerrors.Errorf("%s: %w", key, os.ErrNotExist)
		}
		return nil, xerrors.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	var buffer bytes.Buffer
	if _, err := buffer.ReadFrom(result.Body); err != nil {
		return nil, xerrors.Errorf("failed to read S3 object: %w", err)
	}

	return buffer.Bytes(), nil
}

func (s *s3Storage) URL(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.config.Bucket, key)
}

// key accepts both s3://<bucket>/<key> URLs and bare keys.
func (s *s3Storage) key(url string) (string, error) {
	if !strings.HasPrefix(url, "s3://") {
		return url, nil
	}
	prefix := fmt.Sprintf("s3://%s/", s.config.Bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", xerrors.Errorf("%s is outside bucket %s", url, s.config.Bucket)
	}
	return strings.TrimPrefix(url, prefix), nil
}
