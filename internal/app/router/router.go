// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "portfolio_blog/internal/feature/auth/transport/handler"
	postshandler "portfolio_blog/internal/feature/posts/transport/handler"
	"portfolio_blog/internal/platform/http/view"
	"portfolio_blog/internal/platform/metrics"
	"portfolio_blog/internal/platform/session"
	"portfolio_blog/internal/platform/storage"
)

// Deps are the handlers and middleware the router is assembled from.
type Deps struct {
	Auth          *authhandler.AuthHandler
	Posts         *postshandler.PostHandler
	Health        gin.HandlerFunc
	Metrics       *metrics.HTTPMetrics
	Cookies       *session.Cookies
	Authenticator session.Authenticator
	// UploadDir is served under /uploads when photos are stored locally.
	UploadDir string
	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(view.Templates())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health)
	r.HEAD("/healthz", d.Health)
	r.OPTIONS("/healthz", d.Health)
	if d.UploadDir != "" {
		r.StaticFS(strings.TrimSuffix(storage.URLPrefix, "/"), gin.Dir(d.UploadDir, false))
	}

	// 公開フィードと記事詳細
	r.GET("/", d.Posts.List)
	r.GET("/post/:id", d.Posts.Show)

	// 新規ユーザー登録とメール確認
	r.GET("/register", d.Auth.RegisterForm)
	r.POST("/register", d.Auth.Register)
	r.POST("/confirm/resend", d.Auth.ResendConfirmation)
	r.GET("/confirm/:token", d.Auth.Confirm)
	// ログイン（セッションcookie発行）
	r.GET("/login", d.Auth.LoginForm)
	r.POST("/login", d.Auth.Login)

	// 認証必須のルート
	// → 有効なセッションcookieがなければ /login へリダイレクト
	auth := r.Group("/")
	auth.Use(session.AuthRequired(d.Cookies, d.Authenticator))
	{
		auth.GET("/logout", d.Auth.Logout)
		auth.GET("/create", d.Posts.NewForm)
		auth.POST("/create", d.Posts.Create)
		auth.GET("/edit/:id", d.Posts.EditForm)
		auth.POST("/edit/:id", d.Posts.Update)
		auth.GET("/delete/:id", d.Posts.Delete)
		auth.POST("/delete/:id", d.Posts.Delete)
	}

	return r
}
