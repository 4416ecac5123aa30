package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/api/middleware"
	"github.com/boardflow/boardflow-api/internal/mocks"
	"github.com/boardflow/boardflow-api/internal/service/auth"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid token reaches the handler with the user ID", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		jwt := &mocks.MockJWTService{
			ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				require.Equal(t, "valid-token", tokenString)
				return &auth.Claims{UserID: userID, TokenType: "access"}, nil
			},
		}

		var handlerCalled bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			gotID, ok := middleware.GetUserID(r)
			assert.True(t, ok)
			assert.Equal(t, userID, gotID)
		})

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		jwt := &mocks.MockJWTService{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()

		jwt := &mocks.MockJWTService{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		for _, header := range []string{"valid-token", "Basic dXNlcjpwdw==", "Bearer"} {
			req := httptest.NewRequest(http.MethodGet, "/boards", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()

			middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		jwt := &mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token expired")
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()

		jwt := &mocks.MockJWTService{ValidateErr: auth.ErrInvalidToken}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid token")
	})

	t.Run("unexpected validation failure is a 500", func(t *testing.T) {
		t.Parallel()

		jwt := &mocks.MockJWTService{ValidateErr: assert.AnError}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/boards", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		middleware.NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
