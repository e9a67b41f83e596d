package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_blog/internal/feature/auth/domain"
	"portfolio_blog/internal/feature/auth/domain/entity"
	"portfolio_blog/internal/feature/auth/usecase"
	"portfolio_blog/internal/platform/http/view"
	"portfolio_blog/internal/platform/session"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, username, email, password string) (*entity.User, error)
	ResendFunc   func(ctx context.Context, email string) error
	ConfirmFunc  func(ctx context.Context, token string) (*entity.User, bool, error)
	LoginFunc    func(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error)
	loggedOut    []string
}

func (m *mockAuthUsecase) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password)
	}
	return &entity.User{ID: 1, Username: username, Email: email}, nil // Default: success
}

func (m *mockAuthUsecase) ResendConfirmation(ctx context.Context, email string) error {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, email)
	}
	return nil
}

func (m *mockAuthUsecase) Confirm(ctx context.Context, token string) (*entity.User, bool, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, token)
	}
	return nil, false, usecase.ErrTokenInvalid
}

func (m *mockAuthUsecase) Login(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, userAgent, ip)
	}
	return nil, domain.ErrInvalidCredentials // Default: failure
}

func (m *mockAuthUsecase) Logout(ctx context.Context, sessionID string) {
	m.loggedOut = append(m.loggedOut, sessionID)
}

func newTestCookies() *session.Cookies {
	return session.NewCookies(session.NewCookieStore("test-secret-0123456789abcdef0123", false, time.Hour))
}

func setupRouter(uc *mockAuthUsecase, cookies *session.Cookies) *gin.Engine {
	h := NewAuthHandler(uc, cookies)
	r := gin.New()
	r.SetHTMLTemplate(view.Templates())
	r.GET("/register", h.RegisterForm)
	r.POST("/register", h.Register)
	r.POST("/confirm/resend", h.ResendConfirmation)
	r.GET("/confirm/:token", h.Confirm)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	return r
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_Forms(t *testing.T) {
	router := setupRouter(&mockAuthUsecase{}, newTestCookies())

	for _, path := range []string{"/register", "/login"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `action="`+path+`"`)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	valid := url.Values{"username": {"alice"}, "email": {"a@x.com"}, "password": {"pw"}}

	tests := []struct {
		name           string
		form           url.Values
		registerErr    error
		expectedStatus int
		expectedBody   string
	}{
		{"success", valid, nil, http.StatusOK, msgRegistered},
		{"duplicate username", valid, domain.ErrDuplicateUsername, http.StatusConflict, msgDuplicateUsername},
		{"duplicate email", valid, domain.ErrDuplicateEmail, http.StatusConflict, msgDuplicateEmail},
		{"empty password", valid, usecase.ErrInvalidPassword, http.StatusBadRequest, msgInvalidPassword},
		{"mail dispatch failed", valid, fmt.Errorf("%w: smtp down", usecase.ErrConfirmationNotSent), http.StatusInternalServerError, msgMailFailed},
		{"unexpected error", valid, errors.New("db down"), http.StatusInternalServerError, msgInternal},
		{"invalid email", url.Values{"username": {"alice"}, "email": {"nope"}, "password": {"pw"}}, nil, http.StatusBadRequest, msgInvalidForm},
		{"missing username", url.Values{"email": {"a@x.com"}, "password": {"pw"}}, nil, http.StatusBadRequest, msgInvalidForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{RegisterFunc: func(ctx context.Context, username, email, password string) (*entity.User, error) {
				if tt.registerErr != nil {
					return nil, tt.registerErr
				}
				return &entity.User{ID: 1, Username: username, Email: email}, nil
			}}
			w := httptest.NewRecorder()

			setupRouter(uc, newTestCookies()).ServeHTTP(w, postForm("/register", tt.form))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_ResendConfirmation(t *testing.T) {
	var got []string
	uc := &mockAuthUsecase{ResendFunc: func(ctx context.Context, email string) error {
		got = append(got, email)
		if email == "broken@x.com" {
			return errors.New("smtp down")
		}
		return nil
	}}
	router := setupRouter(uc, newTestCookies())

	for _, email := range []string{"a@x.com", "broken@x.com"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, postForm("/confirm/resend", url.Values{"email": {email}}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, msgResent, w.Body.String())
	}
	assert.Equal(t, []string{"a@x.com", "broken@x.com"}, got)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/confirm/resend", url.Values{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Confirm(t *testing.T) {
	tests := []struct {
		name           string
		already        bool
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"success", false, nil, http.StatusOK, msgConfirmed},
		{"already confirmed", true, nil, http.StatusOK, msgAlreadyConfirmed},
		{"expired", false, usecase.ErrTokenExpired, http.StatusBadRequest, msgLinkExpired},
		{"invalid", false, fmt.Errorf("%w: bad signature", usecase.ErrTokenInvalid), http.StatusBadRequest, msgLinkInvalid},
		{"user not found", false, domain.ErrUserNotFound, http.StatusNotFound, msgUserNotFound},
		{"unexpected", false, errors.New("db down"), http.StatusInternalServerError, msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			uc := &mockAuthUsecase{ConfirmFunc: func(ctx context.Context, token string) (*entity.User, bool, error) {
				gotToken = token
				if tt.err != nil {
					return nil, false, tt.err
				}
				return &entity.User{ID: 1, Confirmed: true}, tt.already, nil
			}}
			w := httptest.NewRecorder()

			setupRouter(uc, newTestCookies()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/confirm/abc.def.ghi", nil))

			assert.Equal(t, "abc.def.ghi", gotToken)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		form           url.Values
		loginErr       error
		expectedStatus int
		expectedBody   string
	}{
		{"success", url.Values{"username": {"alice"}, "password": {"pw"}}, nil, http.StatusSeeOther, ""},
		{"not confirmed", url.Values{"username": {"carol"}, "password": {"pw"}}, domain.ErrNotConfirmed, http.StatusUnauthorized, msgNotConfirmed},
		{"bad credentials", url.Values{"username": {"alice"}, "password": {"x"}}, domain.ErrInvalidCredentials, http.StatusUnauthorized, msgLoginFailed},
		{"store failure", url.Values{"username": {"alice"}, "password": {"pw"}}, errors.New("redis down"), http.StatusInternalServerError, msgInternal},
		{"missing username", url.Values{"password": {"pw"}}, nil, http.StatusUnauthorized, msgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{LoginFunc: func(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error) {
				if tt.loginErr != nil {
					return nil, tt.loginErr
				}
				return &entity.Session{ID: "sid-123", UserID: 1}, nil
			}}
			w := httptest.NewRecorder()

			setupRouter(uc, newTestCookies()).ServeHTTP(w, postForm("/login", tt.form))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusSeeOther {
				assert.Equal(t, "/", w.Header().Get("Location"))
				assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=")
				return
			}
			assert.Equal(t, tt.expectedBody, w.Body.String())
			assert.Empty(t, w.Header().Get("Set-Cookie"))
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	cookies := newTestCookies()
	uc := &mockAuthUsecase{LoginFunc: func(ctx context.Context, username, password, userAgent, ip string) (*entity.Session, error) {
		return &entity.Session{ID: "sid-123", UserID: 1}, nil
	}}
	router := setupRouter(uc, cookies)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, postForm("/login", url.Values{"username": {"alice"}, "password": {"pw"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	res := w.Result()
	defer res.Body.Close()
	require.NotEmpty(t, res.Cookies())

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(res.Cookies()[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, []string{"sid-123"}, uc.loggedOut)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
