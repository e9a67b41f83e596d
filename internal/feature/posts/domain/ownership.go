package domain

import "portfolio_blog/internal/feature/posts/domain/entity"

// Authorize は編集・削除の前に必ず通す所有者チェックです。
func Authorize(post *entity.Post, actorID uint) error {
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != actorID {
		return ErrForbidden
	}
	return nil
}
