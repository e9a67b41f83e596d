// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio_blog/internal/feature/auth/domain"
	"portfolio_blog/internal/feature/auth/domain/entity"
)

const (
	// DefaultSessionTTL はセッションのデフォルト有効期間です。
	DefaultSessionTTL = 7 * 24 * time.Hour

	// maxSessionsPerUser を超えると最も古いセッションから削除します。
	maxSessionsPerUser = 5

	// sessionIDBytes はセッションIDの乱数バイト数です（hexで64文字）。
	sessionIDBytes = 32
)

// dummyPasswordHash はユーザーが存在しない場合にもbcrypt比較を行うためのハッシュです。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// ユーザー名またはメールアドレスが重複する場合、domain.ErrDuplicateUsername / domain.ErrDuplicateEmail を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername はユーザー名（大文字小文字を区別）でユーザーを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// MarkConfirmed は確認フラグを立てます。既に確認済みでもエラーにしません。
	MarkConfirmed(ctx context.Context, id uint) error
}

// TokenService は確認トークンの発行・検証を定義します。
type TokenService interface {
	// Issue はメールアドレスを埋め込んだ署名付きトークンを発行します。
	Issue(email string) (string, error)
	// Validate はトークンを検証し、埋め込まれたメールアドレスを返します。
	// 失敗時は ErrTokenExpired または ErrTokenInvalid を返します。
	Validate(token string) (string, error)
}

// ConfirmationSender は確認メールの送信を定義します。
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, email, token string) error
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	tokens     TokenService
	mailer     ConfirmationSender
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenService,
	mailer ConfirmationSender, sessionTTL time.Duration) *authUsecase {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		mailer:     mailer,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if password == "" {
		return ErrInvalidPassword
	}
	return nil
}

// Register は未確認状態のユーザーを作成し、確認メールを送信します。
// メール送信に失敗してもユーザーはロールバックせず、ErrConfirmationNotSent を返します。
func (u *authUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// 同じユーザー名が登録済みかチェック
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Username: username, Email: email, PasswordHash: string(hashed)}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := u.sendConfirmation(ctx, user.Email); err != nil {
		return user, err
	}
	return user, nil
}

// sendConfirmation はトークンを発行して確認メールを送ります。
func (u *authUsecase) sendConfirmation(ctx context.Context, email string) error {
	tok, err := u.tokens.Issue(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfirmationNotSent, err)
	}
	if err := u.mailer.SendConfirmation(ctx, email, tok); err != nil {
		return fmt.Errorf("%w: %v", ErrConfirmationNotSent, err)
	}
	return nil
}

// ResendConfirmation は未確認ユーザーに確認メールを再送します。
// 未登録・確認済みのアドレスでは何もしません（アドレスの存在を漏らさないため）。
func (u *authUsecase) ResendConfirmation(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.Confirmed {
		return nil
	}
	return u.sendConfirmation(ctx, user.Email)
}

// Confirm はトークンを検証し、対応するユーザーを確認済みにします。
// 既に確認済みの場合は何もせず alreadyConfirmed=true を返します。
func (u *authUsecase) Confirm(ctx context.Context, token string) (*entity.User, bool, error) {
	email, err := u.tokens.Validate(token)
	if err != nil {
		return nil, false, err
	}
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user.Confirmed {
		return user, true, nil
	}
	if err := u.users.MarkConfirmed(ctx, user.ID); err != nil {
		return nil, false, fmt.Errorf("failed to confirm user: %w", err)
	}
	user.Confirmed = true
	return user, false, nil
}

// Login はユーザーを認証し、成功時にサーバー側セッションを作成します。
// 確認フラグはパスワード検証より先にチェックします。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err == nil && !user.Confirmed {
		return nil, domain.ErrNotConfirmed
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return u.createSession(ctx, user.ID, userAgent, ip)
}

// createSession はセッションを保存します。上限を超える場合は最も古いものを削除します。
func (u *authUsecase) createSession(ctx context.Context, userID uint, userAgent, ip string) (*entity.Session, error) {
	count, err := u.sessions.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if count >= maxSessionsPerUser {
		if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to evict oldest session: %w", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := u.now()
	s := &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: userAgent,
		IPAddress: ip,
		CreatedAt: now,
		ExpiresAt: now.Add(u.sessionTTL),
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// newSessionID は暗号論的乱数から64文字のhex IDを生成します。
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Logout はセッションを無条件に破棄します。呼び出し元にエラーは返しません。
func (u *authUsecase) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		slog.Warn("failed to revoke session", "error", err)
	}
}

// Authenticate はセッションIDからログイン中のユーザーIDを解決します。
func (u *authUsecase) Authenticate(ctx context.Context, sessionID string) (uint, error) {
	if sessionID == "" {
		return 0, domain.ErrUnauthenticated
	}
	s, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, domain.ErrUnauthenticated
		}
		return 0, err
	}
	if !s.IsValid() {
		return 0, domain.ErrUnauthenticated
	}
	return s.UserID, nil
}

// Username はIDからユーザー名を返します。記事の投稿者表示に使います。
func (u *authUsecase) Username(ctx context.Context, id uint) (string, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}
