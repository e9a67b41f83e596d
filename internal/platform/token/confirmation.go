// Package token はメールアドレス確認用の署名付きトークンを発行・検証します。
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portfolio_blog/internal/feature/auth/usecase"
)

const (
	// PurposeEmailConfirm is the purpose tag bound into every confirmation token.
	PurposeEmailConfirm = "email-confirm"

	// DefaultMaxAge is how long a confirmation link stays redeemable.
	DefaultMaxAge = 3600 * time.Second
)

// ConfirmationTokens issues and validates HS256 tokens that bind an email address
// to its issuance time. The signing key is derived from the server secret and the
// purpose tag, so a token signed for another purpose never verifies here.
type ConfirmationTokens struct {
	key     []byte
	purpose string
	maxAge  time.Duration
	now     func() time.Time
}

// Compile-time check.
var _ usecase.TokenService = (*ConfirmationTokens)(nil)

// Option customizes ConfirmationTokens.
type Option func(*ConfirmationTokens)

// WithClock overrides the time source. Tests use it to move past the expiry window.
func WithClock(now func() time.Time) Option {
	return func(t *ConfirmationTokens) { t.now = now }
}

// WithMaxAge overrides DefaultMaxAge.
func WithMaxAge(d time.Duration) Option {
	return func(t *ConfirmationTokens) { t.maxAge = d }
}

// NewConfirmationTokens creates a token service for the given secret and purpose.
func NewConfirmationTokens(secret, purpose string, opts ...Option) *ConfirmationTokens {
	t := &ConfirmationTokens{
		key:     deriveKey(secret, purpose),
		purpose: purpose,
		maxAge:  DefaultMaxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// deriveKey は秘密鍵と用途タグからHMAC鍵を導出します。
func deriveKey(secret, purpose string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return mac.Sum(nil)
}

// Issue returns a signed token for email stamped with the current time.
func (t *ConfirmationTokens) Issue(email string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  email,
		Audience: jwt.ClaimStrings{t.purpose},
		IssuedAt: jwt.NewNumericDate(t.now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and purpose, then the age of the token.
// It returns usecase.ErrTokenInvalid or usecase.ErrTokenExpired on failure.
func (t *ConfirmationTokens) Validate(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(tok *jwt.Token) (interface{}, error) {
			// HMAC以外のアルゴリズムは拒否
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return t.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(t.purpose),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrTokenInvalid, err)
	}
	if claims.IssuedAt == nil || claims.Subject == "" {
		return "", usecase.ErrTokenInvalid
	}

	// iat は秒精度なので現在時刻も秒に丸めて比較する
	age := t.now().Truncate(time.Second).Sub(claims.IssuedAt.Time)
	if age > t.maxAge {
		return "", usecase.ErrTokenExpired
	}
	if age < 0 {
		return "", fmt.Errorf("%w: issued in the future", usecase.ErrTokenInvalid)
	}
	return claims.Subject, nil
}
