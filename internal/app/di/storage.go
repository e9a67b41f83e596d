package di

import (
	"context"
	"log/slog"
	"time"

	postsusecase "portfolio_blog/internal/feature/posts/usecase"
	platformhttp "portfolio_blog/internal/platform/http"
	"portfolio_blog/internal/platform/storage"
)

// s3Timeout はS3呼び出し1回あたりのHTTPタイムアウトです。
const s3Timeout = 30 * time.Second

// PhotoStore は写真の保存先と公開URLをまとめたものです。
type PhotoStore interface {
	postsusecase.PhotoStorage
	URL(name string) string
}

var (
	_ PhotoStore = (*storage.LocalStorage)(nil)
	_ PhotoStore = (*storage.S3Storage)(nil)
)

// NewPhotoStore はS3_BUCKETが設定されていればS3を、なければローカルディレクトリを使います。
// ローカルの場合は /uploads で配信するディレクトリも返します（S3では空）。
func NewPhotoStore(ctx context.Context, cfg storage.Config) (PhotoStore, string, error) {
	if cfg.UseS3() {
		httpClient := platformhttp.NewStorageClient(s3Timeout)
		s3, err := storage.NewS3Storage(ctx, cfg, httpClient)
		if err != nil {
			return nil, "", err
		}
		slog.Info("photo storage: s3", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return s3, "", nil
	}

	local, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	slog.Info("photo storage: local", "dir", local.Dir())
	return local, local.Dir(), nil
}
