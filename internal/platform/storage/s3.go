package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// keyPrefix namespaces photo objects inside the bucket.
const keyPrefix = "photos/"

// objectAPI is the subset of the S3 client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores photos as objects in an S3-compatible bucket (AWS or MinIO).
type S3Storage struct {
	api     objectAPI
	bucket  string
	baseURL string
}

// NewS3Storage builds an S3 client from static credentials.
// When cfg.S3Endpoint is set, path-style addressing is used so MinIO works.
// httpClient must stay a BuildableClient so the SDK can apply AWS_CA_BUNDLE to it.
// nil uses the SDK default client.
func NewS3Storage(ctx context.Context, cfg Config, httpClient *awshttp.BuildableClient) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if httpClient != nil {
		opts = append(opts, awsconfig.WithHTTPClient(httpClient))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Storage{api: client, bucket: cfg.S3Bucket, baseURL: publicBaseURL(cfg)}, nil
}

// publicBaseURL is the URL prefix under which objects of the bucket are readable.
func publicBaseURL(cfg Config) string {
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket + "/"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", cfg.S3Bucket, cfg.S3Region)
}

// URL returns the public URL of a stored photo.
func (s *S3Storage) URL(name string) string {
	return s.baseURL + objectKey(name)
}

func objectKey(name string) string {
	return keyPrefix + name
}

// Save uploads r as the object for name.
func (s *S3Storage) Save(ctx context.Context, name string, r io.Reader) error {
	// 署名にはシーク可能なボディが必要
	body, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read upload %s: %w", name, err)
		}
		body = bytes.NewReader(b)
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(name)),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// Remove deletes the object for name. S3 treats missing keys as success.
func (s *S3Storage) Remove(ctx context.Context, name string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}
