// Package adapters はpostsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_blog/internal/feature/posts/domain"
	"portfolio_blog/internal/feature/posts/domain/entity"
	"portfolio_blog/internal/feature/posts/usecase"
)

// postGorm はGORMを使ってPostRepositoryを実装します。
type postGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure postGorm implements PostRepository.
var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm はpostGormの新しいインスタンスを生成します。
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

func photosByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// Create は記事と写真行を同一トランザクションで挿入します。
func (r *postGorm) Create(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return errors.New("post is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(post).Error
	})
}

// FindByID は写真を含めて記事を取得します。
func (r *postGorm) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var post entity.Post
	err := r.db.WithContext(ctx).Preload("Photos", photosByID).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List は日付降順（NULLは最後）、同日ならID降順で返します。
func (r *postGorm) List(ctx context.Context) ([]entity.Post, error) {
	var posts []entity.Post
	err := r.db.WithContext(ctx).
		Preload("Photos", photosByID).
		Order("date IS NULL").
		Order("date DESC").
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// lockPost は更新用に記事行をロックして読み込みます（SQLiteではロック句は無視されます）。
func lockPost(tx *gorm.DB, id uint) (*entity.Post, error) {
	var post entity.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Update は行ロック下で mutate を適用し、写真には触れずに保存します。
func (r *postGorm) Update(ctx context.Context, id uint, mutate func(*entity.Post) error) (*entity.Post, error) {
	var updated *entity.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if err := mutate(post); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if err := photosByID(tx).Where("post_id = ?", post.ID).Find(&post.Photos).Error; err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は guard を通過した記事とその写真行を削除します。
func (r *postGorm) Delete(ctx context.Context, id uint, guard func(*entity.Post) error) ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if err := guard(post); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Find(&photos).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&entity.Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Post{}, post.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}
