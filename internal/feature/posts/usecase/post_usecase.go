// Package usecase はpostsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"portfolio_blog/internal/feature/posts/domain"
	"portfolio_blog/internal/feature/posts/domain/entity"
)

// PostRepository は記事と写真の永続化層を抽象化します。
type PostRepository interface {
	// Create は記事と写真行を1つのトランザクションで保存します。
	Create(ctx context.Context, post *entity.Post) error

	// FindByID は写真付きで記事を取得します。存在しない場合は domain.ErrPostNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.Post, error)

	// List は日付の新しい順（日付なしは最後、同順位はID降順）で全記事を返します。
	List(ctx context.Context) ([]entity.Post, error)

	// Update は行ロックを取ったトランザクション内で mutate を適用して保存します。
	// mutate がエラーを返した場合は何も保存しません。
	Update(ctx context.Context, id uint, mutate func(*entity.Post) error) (*entity.Post, error)

	// Delete は guard を通過した記事と写真行を1つのトランザクションで削除し、削除した写真を返します。
	Delete(ctx context.Context, id uint, guard func(*entity.Post) error) ([]entity.Photo, error)
}

// PhotoStorage は写真ファイルの保存先を抽象化します（ローカルディスクまたはS3）。
type PhotoStorage interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Remove(ctx context.Context, name string) error
}

// PhotoUpload is one file slot of a create form.
type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

// postUsecase は記事CRUDを実装します。
type postUsecase struct {
	posts   PostRepository
	storage PhotoStorage
}

// NewPostUsecase はpostUsecaseの新しいインスタンスを生成します。
func NewPostUsecase(posts PostRepository, storage PhotoStorage) *postUsecase {
	return &postUsecase{posts: posts, storage: storage}
}

// Create は写真ファイルを先に書き込み、その後で記事と写真行を保存します。
// どこかで失敗した場合は書き込み済みのファイルを削除します。
func (u *postUsecase) Create(ctx context.Context, ownerID uint, fields domain.PostFields, uploads []PhotoUpload) (*entity.Post, error) {
	post := &entity.Post{UserID: ownerID}
	if err := fields.Apply(post); err != nil {
		return nil, err
	}

	var saved []string
	for _, up := range uploads {
		// ファイル名が空のスロットは未選択として扱う
		if up.Filename == "" || up.Content == nil {
			continue
		}
		name := domain.StoredName(up.Filename)
		if err := u.storage.Save(ctx, name, up.Content); err != nil {
			u.removeFiles(ctx, saved)
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		saved = append(saved, name)
		post.Photos = append(post.Photos, entity.Photo{Filename: name})
	}

	if err := u.posts.Create(ctx, post); err != nil {
		u.removeFiles(ctx, saved)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// Get は公開記事を1件取得します。
func (u *postUsecase) Get(ctx context.Context, id uint) (*entity.Post, error) {
	return u.posts.FindByID(ctx, id)
}

// List は公開フィードを返します。
func (u *postUsecase) List(ctx context.Context) ([]entity.Post, error) {
	return u.posts.List(ctx)
}

// Update は所有者のみが記事の編集可能フィールドを上書きできます。写真は変更しません。
func (u *postUsecase) Update(ctx context.Context, id, actorID uint, fields domain.PostFields) (*entity.Post, error) {
	return u.posts.Update(ctx, id, func(p *entity.Post) error {
		if err := domain.Authorize(p, actorID); err != nil {
			return err
		}
		return fields.Apply(p)
	})
}

// Delete は所有者のみが記事を削除できます。
// ファイルの削除はコミット後にベストエフォートで行います。
func (u *postUsecase) Delete(ctx context.Context, id, actorID uint) error {
	photos, err := u.posts.Delete(ctx, id, func(p *entity.Post) error {
		return domain.Authorize(p, actorID)
	})
	if err != nil {
		return err
	}

	names := make([]string, 0, len(photos))
	for _, ph := range photos {
		names = append(names, ph.Filename)
	}
	u.removeFiles(ctx, names)
	return nil
}

func (u *postUsecase) removeFiles(ctx context.Context, names []string) {
	for _, name := range names {
		if err := u.storage.Remove(ctx, name); err != nil {
			slog.Warn("failed to remove photo file", "file", name, "error", err)
		}
	}
}
