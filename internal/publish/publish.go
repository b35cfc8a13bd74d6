// Package publish stores rendered reports somewhere they can be fetched
// later: a Cloudflare R2 bucket or a local directory.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"

	"github.com/pable/wintracker/internal/report"
)

// Sink accepts a PNG under key and returns where it can be found.
type Sink interface {
	Put(ctx context.Context, key string, png []byte) (string, error)
}

// ObjectKey is the storage key of an artifact:
// reports/<user slug>/<artifact id>/<filename>.
func ObjectKey(a *report.Artifact) string {
	s := slug.Make(a.UserName)
	if s == "" {
		s = "anonymous"
	}
	return fmt.Sprintf("reports/%s/%s/%s", s, a.ID, a.Filename())
}

// Publish stores a under its object key.
func Publish(ctx context.Context, sink Sink, a *report.Artifact) (string, error) {
	return sink.Put(ctx, ObjectKey(a), a.PNG)
}

// R2Config holds the bucket credentials.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// CDNBaseURL prefixes returned locations. Empty falls back to the
	// account's r2.cloudflarestorage.com endpoint.
	CDNBaseURL string
}

// Enabled reports whether enough is set to talk to R2.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

func (c R2Config) endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// objectPutter is the part of *s3.Client the sink needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Sink uploads to an R2 bucket through the S3 API.
type R2Sink struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewR2Sink builds an S3 client against the account's R2 endpoint using
// static credentials.
func NewR2Sink(ctx context.Context, cfg R2Config) (*R2Sink, error) {
	if !cfg.Enabled() {
		return nil, errors.New("r2 is not configured: account id, access key, secret and bucket are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.endpoint())
	})

	base := cfg.CDNBaseURL
	if base == "" {
		base = cfg.endpoint()
	}
	return &R2Sink{client: client, bucket: cfg.Bucket, baseURL: strings.TrimSuffix(base, "/")}, nil
}

// Put uploads png and returns its public URL.
func (s *R2Sink) Put(ctx context.Context, key string, png []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// DirSink writes reports beneath a local directory.
type DirSink struct {
	Root string
}

// Put writes png to Root/key, creating parent directories, and returns the
// file path.
func (d DirSink) Put(ctx context.Context, key string, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	path := filepath.Join(d.Root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
