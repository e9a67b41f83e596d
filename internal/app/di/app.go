package di

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portfolio_blog/internal/app/router"
	authadapters "portfolio_blog/internal/feature/auth/adapters"
	authentity "portfolio_blog/internal/feature/auth/domain/entity"
	authhandler "portfolio_blog/internal/feature/auth/transport/handler"
	authusecase "portfolio_blog/internal/feature/auth/usecase"
	postsadapters "portfolio_blog/internal/feature/posts/adapters"
	postsentity "portfolio_blog/internal/feature/posts/domain/entity"
	postshandler "portfolio_blog/internal/feature/posts/transport/handler"
	postsusecase "portfolio_blog/internal/feature/posts/usecase"
	"portfolio_blog/internal/platform/http/handler"
	"portfolio_blog/internal/platform/metrics"
	"portfolio_blog/internal/platform/session"
	"portfolio_blog/internal/platform/storage"
	"portfolio_blog/internal/platform/token"
)

// DevSecretKey is used when SECRET_KEY is unset. Never use it in production.
const DevSecretKey = "dev-secret-change-me"

// Config holds the application-level settings that are not owned by a platform package.
type Config struct {
	SecretKey     string
	SessionTTL    time.Duration
	SecureCookies bool
	CORSOrigins   []string
	Storage       storage.Config
}

// LoadConfigFromEnv reads SECRET_KEY, SESSION_TTL, APP_BASE_URL, CORS_ALLOWED_ORIGINS and the storage variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		SecretKey:     os.Getenv("SECRET_KEY"),
		SessionTTL:    authusecase.DefaultSessionTTL,
		SecureCookies: strings.HasPrefix(os.Getenv("APP_BASE_URL"), "https://"),
		Storage:       storage.LoadConfigFromEnv(),
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = DevSecretKey
	}
	if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && d > 0 {
		cfg.SessionTTL = d
	}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg
}

// Deps are the external resources the application is built on.
// Redis may be nil, in which case sessions are stored in the database.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer authusecase.ConfirmationSender
}

// App is the assembled HTTP application.
type App struct {
	Router   *gin.Engine
	Sessions authusecase.SessionRepository
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authentity.User{},
		&authadapters.SessionRecord{},
		&postsentity.Post{},
		&postsentity.Photo{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	slog.Info("database migrated")
	return nil
}

// NewApp wires repositories, usecases and handlers into a router.
func NewApp(ctx context.Context, cfg Config, deps Deps) (*App, error) {
	photos, uploadDir, err := NewPhotoStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to set up photo storage: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(deps.DB)
	sessionRepo := NewSessionRepository(deps.Redis, deps.DB)
	postRepo := postsadapters.NewPostGorm(deps.DB)

	// Usecase
	tokens := token.NewConfirmationTokens(cfg.SecretKey, token.PurposeEmailConfirm)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens, deps.Mailer, cfg.SessionTTL)
	postUC := postsusecase.NewPostUsecase(postRepo, photos)

	// Handler
	cookies := session.NewCookies(session.NewCookieStore(cfg.SecretKey, cfg.SecureCookies, cfg.SessionTTL))
	authH := authhandler.NewAuthHandler(authUC, cookies)
	postH := postshandler.NewPostHandler(postUC, authUC, photos)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := router.NewRouter(router.Deps{
		Auth:          authH,
		Posts:         postH,
		Health:        handler.Health(pingDB(deps.DB)),
		Metrics:       metrics.NewHTTPMetrics(reg),
		Cookies:       cookies,
		Authenticator: authUC,
		UploadDir:     uploadDir,
		CORSOrigins:   cfg.CORSOrigins,
	})
	return &App{Router: r, Sessions: sessionRepo}, nil
}

// pingDB checks the database connection pool.
func pingDB(db *gorm.DB) handler.Checker {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// SweepExpiredSessions deletes expired server-side sessions once.
func SweepExpiredSessions(ctx context.Context, sessions authusecase.SessionRepository) {
	n, err := sessions.DeleteExpired(ctx)
	if err != nil {
		slog.Warn("failed to sweep expired sessions", "error", err)
		return
	}
	slog.Info("expired sessions swept", "deleted", n)
}
