// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_blog/internal/feature/auth/domain"
	"portfolio_blog/internal/feature/auth/domain/entity"
	"portfolio_blog/internal/feature/auth/transport/http/dto"
	"portfolio_blog/internal/feature/auth/usecase"
	"portfolio_blog/internal/platform/http/view"
)

// User-facing messages. Authentication outcomes are plain text, not structured codes.
const (
	msgRegistered        = "Registration successful. Check your email to confirm your account."
	msgDuplicateUsername = "That username is already taken."
	msgDuplicateEmail    = "That email address is already registered."
	msgInvalidPassword   = "Password must not be empty."
	msgInvalidForm       = "Please fill in all fields with valid values."
	msgMailFailed        = "Your account was created but the confirmation email could not be sent. Please request a new link."
	msgInternal          = "Something went wrong. Please try again later."
	msgResent            = "If that address is waiting for confirmation, a new link is on its way."
	msgConfirmed         = "Your account has been confirmed. You can now log in."
	msgAlreadyConfirmed  = "Your account is already confirmed. Please log in."
	msgLinkExpired       = "The confirmation link has expired."
	msgLinkInvalid       = "The confirmation link is invalid."
	msgUserNotFound      = "No account matches this confirmation link."
	msgNotConfirmed      = "Please confirm your email address before logging in."
	msgLoginFailed       = "Login failed."
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, username, email, password string) (*entity.User, error)
	ResendConfirmation(ctx context.Context, email string) error
	Confirm(ctx context.Context, token string) (*entity.User, bool, error)
	Login(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error)
	Logout(ctx context.Context, sessionID string)
}

// SessionCookies はブラウザ側のセッションcookieを扱います。
type SessionCookies interface {
	SessionID(r *http.Request) string
	Start(w http.ResponseWriter, r *http.Request, sessionID string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	cookies SessionCookies
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// RegisterForm は登録フォームを表示します。
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.RegisterPage, nil)
}

// Register はユーザー登録を処理します。
// - フォームのバリデーションエラー時は400
// - ユーザー名・メールアドレスの重複時は409
// - 確認メール送信失敗時はユーザーを残したまま500
// - 成功時は「メールを確認してください」を200で返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgInvalidForm)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		slog.Info("user registered", "user_id", user.ID, "username", user.Username, "remote_addr", c.ClientIP())
		c.String(http.StatusOK, msgRegistered)
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.String(http.StatusConflict, msgDuplicateUsername)
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.String(http.StatusConflict, msgDuplicateEmail)
	case errors.Is(err, usecase.ErrInvalidPassword):
		c.String(http.StatusBadRequest, msgInvalidPassword)
	case errors.Is(err, usecase.ErrConfirmationNotSent):
		slog.Error("confirmation email not sent", "error", err, "username", req.Username)
		c.String(http.StatusInternalServerError, msgMailFailed)
	default:
		slog.Error("registration failed", "error", err, "username", req.Username)
		c.String(http.StatusInternalServerError, msgInternal)
	}
}

// ResendConfirmation は確認メールを再送します。アドレスの存在有無に関わらず同じ応答を返します。
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req dto.ResendReq
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, msgInvalidForm)
		return
	}
	if err := h.auth.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		slog.Error("resend confirmation failed", "error", err)
	}
	c.String(http.StatusOK, msgResent)
}

// Confirm は確認リンクのトークンを検証してアカウントを有効化します。
//
// エンドポイント: GET /confirm/:token
func (h *AuthHandler) Confirm(c *gin.Context) {
	user, already, err := h.auth.Confirm(c.Request.Context(), c.Param("token"))
	switch {
	case err == nil && already:
		c.String(http.StatusOK, msgAlreadyConfirmed)
	case err == nil:
		slog.Info("user confirmed", "user_id", user.ID)
		c.String(http.StatusOK, msgConfirmed)
	case errors.Is(err, usecase.ErrTokenExpired):
		c.String(http.StatusBadRequest, msgLinkExpired)
	case errors.Is(err, usecase.ErrTokenInvalid):
		slog.Warn("invalid confirmation token", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusBadRequest, msgLinkInvalid)
	case errors.Is(err, domain.ErrUserNotFound):
		c.String(http.StatusNotFound, msgUserNotFound)
	default:
		slog.Error("confirmation failed", "error", err)
		c.String(http.StatusInternalServerError, msgInternal)
	}
}

// LoginForm はログインフォームを表示します。
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, view.LoginPage, nil)
}

// Login はユーザーを認証し、セッションcookieを発行してホームへリダイレクトします。
// 未確認ユーザーとそれ以外の失敗は別のメッセージを返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBind(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.String(http.StatusUnauthorized, msgLoginFailed)
		return
	}

	s, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotConfirmed):
			c.String(http.StatusUnauthorized, msgNotConfirmed)
		case errors.Is(err, domain.ErrInvalidCredentials):
			slog.Warn("login failed", "username", req.Username, "remote_addr", c.ClientIP())
			c.String(http.StatusUnauthorized, msgLoginFailed)
		default:
			slog.Error("login error", "error", err, "username", req.Username)
			c.String(http.StatusInternalServerError, msgInternal)
		}
		return
	}

	if err := h.cookies.Start(c.Writer, c.Request, s.ID); err != nil {
		slog.Error("failed to write session cookie", "error", err)
		h.auth.Logout(c.Request.Context(), s.ID)
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}
	slog.Info("user login successful", "user_id", s.UserID, "remote_addr", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout はセッションを破棄してホームへリダイレクトします。失敗してもユーザーには見せません。
func (h *AuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), h.cookies.SessionID(c.Request))
	if err := h.cookies.Clear(c.Writer, c.Request); err != nil {
		slog.Warn("failed to clear session cookie", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}
