// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"portfolio_blog/internal/feature/auth/domain"
	"portfolio_blog/internal/feature/auth/domain/entity"
	"portfolio_blog/internal/feature/auth/usecase"
	"portfolio_blog/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 一意制約違反の場合、どちらの列が衝突したかを調べて
// domain.ErrDuplicateUsername または domain.ErrDuplicateEmail を返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	if !db.IsUniqueViolation(err) {
		return err
	}
	if _, findErr := r.FindByUsername(ctx, u.Username); findErr == nil {
		return domain.ErrDuplicateUsername
	}
	return domain.ErrDuplicateEmail
}

// first は条件に一致する最初のユーザーを返します。
// 登録時の重複確認では「見つからない」が通常の結果なので、
// Firstではなく Find + RowsAffected で判定しエラーログを出さないようにします。
func (r *userGorm) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	result := r.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&u)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// FindByUsername はユーザー名でユーザーを取得します（完全一致）。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// MarkConfirmed は確認フラグを立てます。単一のUPDATE文なので冪等です。
func (r *userGorm) MarkConfirmed(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("confirmed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
