// Package storage persists uploaded photo files on local disk or in S3.
package storage

import "os"

// DefaultUploadDir is where photos are written when S3 is not configured.
const DefaultUploadDir = "static/uploads"

// Config selects and configures the photo storage backend.
type Config struct {
	UploadDir string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // e.g. http://minio:9000; empty for AWS
	S3AccessKey string
	S3SecretKey string
}

// UseS3 reports whether photos go to a bucket instead of the local directory.
func (c Config) UseS3() bool {
	return c.S3Bucket != ""
}

// LoadConfigFromEnv reads UPLOAD_DIR and S3_* variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		UploadDir:   os.Getenv("UPLOAD_DIR"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = DefaultUploadDir
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	return cfg
}
