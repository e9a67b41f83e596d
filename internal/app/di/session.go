// Package di はアプリケーション部品を組み立てるファクトリーを提供します。
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "portfolio_blog/internal/feature/auth/adapters"
	"portfolio_blog/internal/feature/auth/usecase"
	"portfolio_blog/internal/platform/session"
)

// sessionKeyPrefix はRedis上のセッションキーの接頭辞です。
const sessionKeyPrefix = "session"

// NewSessionRepository はSessionRepositoryの実装を生成します。
// Redisが利用可能ならRedis実装を、そうでなければDBのsessionsテーブルを使います。
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, sessionKeyPrefix)
	}
	return authadapters.NewSessionGorm(db)
}
