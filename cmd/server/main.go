package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"portfolio_blog/internal/app/di"
	platformdb "portfolio_blog/internal/platform/db"
	"portfolio_blog/internal/platform/mail"
	platformredis "portfolio_blog/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	ctx := context.Background()

	// db
	dbCfg := platformdb.LoadConfigFromEnv()
	db, err := platformdb.OpenDB(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if dbCfg.Migrate {
		if err := di.Migrate(db); err != nil {
			log.Fatal(err)
		}
	}

	// Redis（未設定・接続失敗時はDBのsessionsテーブルを使う）
	var rdb *redisv9.Client
	if redisCfg := platformredis.LoadConfigFromEnv(); redisCfg.Enabled() {
		if tmp, err := platformredis.NewRedisClient(redisCfg); err != nil {
			slog.Warn("Redis unavailable. Storing sessions in the database.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// SECRET_KEYチェック（開発中の注意喚起）
	cfg := di.LoadConfigFromEnv()
	if cfg.SecretKey == di.DevSecretKey {
		slog.Warn("SECRET_KEY is not set. Set a strong secret in production.")
	}

	app, err := di.NewApp(ctx, cfg, di.Deps{
		DB:     db,
		Redis:  rdb,
		Mailer: mail.NewSMTPMailer(mail.LoadConfigFromEnv()),
	})
	if err != nil {
		log.Fatal(err)
	}

	// 起動時に期限切れセッションを掃除
	di.SweepExpiredSessions(ctx, app.Sessions)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := app.Router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
