package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardflow/boardflow-api/internal/api"
	"github.com/boardflow/boardflow-api/internal/api/shared"
	"github.com/boardflow/boardflow-api/internal/domain"
	"github.com/boardflow/boardflow-api/internal/mocks"
	"github.com/boardflow/boardflow-api/internal/service/auth"
)

type authFixture struct {
	handler  *api.AuthHandler
	users    *mocks.MockUserStore
	jwt      *mocks.MockJWTService
	verifier *mocks.MockPasswordVerifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := mocks.NewMockUserStore()
	jwt := &mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"}
	verifier := &mocks.MockPasswordVerifier{}

	return &authFixture{
		handler:  api.NewAuthHandler(users, jwt, verifier, verifier, testLogger()),
		users:    users,
		jwt:      jwt,
		verifier: verifier,
	}
}

func (f *authFixture) addUser(t *testing.T, email, password string) *domain.User {
	t.Helper()

	hashed, err := f.verifier.Hash(password)
	require.NoError(t, err)

	user, err := domain.NewUser(email, "Ada", hashed)
	require.NoError(t, err)

	f.users.Users[email] = user
	return user
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates the user and issues tokens", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := jsonBody(t, api.RegisterRequest{
			Email:       "ada@example.com",
			Password:    "a long enough password",
			DisplayName: "Ada",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		rec := httptest.NewRecorder()

		f.handler.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp api.AuthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)

		stored, ok := f.users.Users["ada@example.com"]
		require.True(t, ok)
		assert.Equal(t, resp.UserID, stored.ID)
		assert.Equal(t, "hashed:a long enough password", stored.HashedPassword)
	})

	t.Run("duplicate email yields 409", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.addUser(t, "ada@example.com", "a long enough password")

		body := jsonBody(t, api.RegisterRequest{
			Email:       "ada@example.com",
			Password:    "a long enough password",
			DisplayName: "Ada",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		rec := httptest.NewRecorder()

		f.handler.Register(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already exists", decodeError(t, rec).Error)
	})

	t.Run("short password yields 400", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := jsonBody(t, api.RegisterRequest{
			Email:       "ada@example.com",
			Password:    "short",
			DisplayName: "Ada",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		rec := httptest.NewRecorder()

		f.handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, f.users.Users)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		user := f.addUser(t, "ada@example.com", "a long enough password")
		f.verifier.CompareFn = func(hashedPassword, password string) error {
			require.Equal(t, user.HashedPassword, hashedPassword)
			require.Equal(t, "a long enough password", password)
			return nil
		}

		body := jsonBody(t, api.LoginRequest{
			Email:    "ada@example.com",
			Password: "a long enough password",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		rec := httptest.NewRecorder()

		f.handler.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.AuthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, user.ID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
	})

	t.Run("wrong password yields 401", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.addUser(t, "ada@example.com", "a long enough password")
		f.verifier.CompareErr = assert.AnError

		body := jsonBody(t, api.LoginRequest{
			Email:    "ada@example.com",
			Password: "wrong password",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		rec := httptest.NewRecorder()

		f.handler.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, rec).Error)
	})

	t.Run("unknown email yields the same 401", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := jsonBody(t, api.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever password",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		rec := httptest.NewRecorder()

		f.handler.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeError(t, rec).Error)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		userID := uuid.New()
		f.jwt.ValidateRefreshTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			require.Equal(t, "old-refresh-token", tokenString)
			return &auth.Claims{UserID: userID, TokenType: "refresh"}, nil
		}

		body := jsonBody(t, api.RefreshTokenRequest{RefreshToken: "old-refresh-token"})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
		rec := httptest.NewRecorder()

		f.handler.RefreshToken(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.RefreshTokenResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
	})

	t.Run("expired refresh token yields 401", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		f.jwt.ValidateErr = auth.ErrExpiredRefreshToken

		body := jsonBody(t, api.RefreshTokenRequest{RefreshToken: "stale"})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", body)
		rec := httptest.NewRecorder()

		f.handler.RefreshToken(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", decodeError(t, rec).Error)
	})
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("updates display name and telegram chat ID", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		user := f.addUser(t, "ada@example.com", "a long enough password")

		body := jsonBody(t, api.UpdateProfileRequest{
			DisplayName:    "Countess Ada",
			TelegramChatID: "424242",
		})
		req := httptest.NewRequest(http.MethodPut, "/users/me", body)
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, user.ID)
		rec := httptest.NewRecorder()

		f.handler.UpdateProfile(rec, req.WithContext(ctx))

		require.Equal(t, http.StatusOK, rec.Code)

		stored := f.users.Users["ada@example.com"]
		assert.Equal(t, "Countess Ada", stored.DisplayName)
		assert.Equal(t, "424242", stored.TelegramChatID)
	})

	t.Run("no authenticated user yields 401", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := jsonBody(t, api.UpdateProfileRequest{DisplayName: "Ada"})
		req := httptest.NewRequest(http.MethodPut, "/users/me", body)
		rec := httptest.NewRecorder()

		f.handler.UpdateProfile(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
