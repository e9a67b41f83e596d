package storage

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformhttp "portfolio_blog/internal/platform/http"
)

// fakeObjectAPI records calls instead of talking to S3.
type fakeObjectAPI struct {
	puts    map[string]string
	deletes []string
	err     error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// onlyReader hides Seek so Save has to buffer.
type onlyReader struct{ io.Reader }

func TestS3Storage_SaveAndRemove(t *testing.T) {
	api := &fakeObjectAPI{}
	s := &S3Storage{api: api, bucket: "photos"}
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a_trip.jpg", strings.NewReader("seekable")))
	require.NoError(t, s.Save(ctx, "b_trip.jpg", onlyReader{strings.NewReader("stream")}))
	require.NoError(t, s.Remove(ctx, "a_trip.jpg"))

	assert.Equal(t, "seekable", api.puts["photos/photos/a_trip.jpg"])
	assert.Equal(t, "stream", api.puts["photos/photos/b_trip.jpg"])
	assert.Equal(t, []string{"photos/photos/a_trip.jpg"}, api.deletes)
}

func TestS3Storage_Errors(t *testing.T) {
	s := &S3Storage{api: &fakeObjectAPI{err: errors.New("access denied")}, bucket: "photos"}
	ctx := context.Background()

	assert.ErrorContains(t, s.Save(ctx, "x.jpg", strings.NewReader("x")), "access denied")
	assert.ErrorContains(t, s.Remove(ctx, "x.jpg"), "access denied")
}

func minioConfig() Config {
	return Config{
		S3Bucket:    "photos",
		S3Region:    "us-east-1",
		S3Endpoint:  "http://localhost:9000",
		S3AccessKey: "minio",
		S3SecretKey: "minio123",
	}
}

// writeCABundle writes a self-signed CA certificate in PEM form and returns its path.
func writeCABundle(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "corp-proxy-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	return path
}

func TestNewS3Storage(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", "")

	tests := []struct {
		name   string
		client *awshttp.BuildableClient
	}{
		{"storage client", platformhttp.NewStorageClient(time.Second)},
		{"sdk default client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Storage(context.Background(), minioConfig(), tt.client)

			require.NoError(t, err)
			assert.Equal(t, "photos", s.bucket)
			assert.NotNil(t, s.api)
			assert.Equal(t, "http://localhost:9000/photos/photos/a.jpg", s.URL("a.jpg"))
		})
	}
}

// TestNewS3Storage_CABundle は AWS_CA_BUNDLE 指定時もクライアントを構築でき、
// CAとトランスポート設定の両方が反映されることを検証します。
func TestNewS3Storage_CABundle(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", writeCABundle(t))

	s, err := NewS3Storage(context.Background(), minioConfig(), platformhttp.NewStorageClient(time.Second))
	require.NoError(t, err)

	client, ok := s.api.(*s3.Client)
	require.True(t, ok)
	buildable, ok := client.Options().HTTPClient.(*awshttp.BuildableClient)
	require.True(t, ok, "http client must stay buildable")

	tr := buildable.GetTransport()
	require.NotNil(t, tr.TLSClientConfig)
	assert.NotNil(t, tr.TLSClientConfig.RootCAs, "custom CA is added to the transport")
	assert.Equal(t, 100, tr.MaxIdleConns, "storage transport settings are kept")
	assert.Equal(t, time.Second, buildable.GetTimeout())
}

func TestNewS3Storage_BadCABundle(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", filepath.Join(t.TempDir(), "missing.pem"))

	_, err := NewS3Storage(context.Background(), minioConfig(), platformhttp.NewStorageClient(time.Second))

	assert.ErrorContains(t, err, "failed to load aws config")
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://blog-photos.s3.ap-northeast-1.amazonaws.com/",
		publicBaseURL(Config{S3Bucket: "blog-photos", S3Region: "ap-northeast-1"}))
	assert.Equal(t, "http://minio:9000/blog-photos/",
		publicBaseURL(Config{S3Bucket: "blog-photos", S3Endpoint: "http://minio:9000/"}))
}
