package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salonsys/salon-admin/internal/handlers"
	"github.com/salonsys/salon-admin/internal/middleware/auth"
	"github.com/salonsys/salon-admin/internal/models"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/storage"
	"github.com/salonsys/salon-admin/internal/token"
)

func newTestServer(t *testing.T) (*echo.Echo, *repo.Repo) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Client{}, &models.Procedure{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	store := repo.New(gdb)
	tokens := token.NewService([]byte("test-secret"), time.Minute)
	photos, err := storage.NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:      &handlers.AuthHandler{Repo: store, Tokens: tokens},
		ClientHandler:    &handlers.ClientHandler{Repo: store, Photos: photos},
		ProcedureHandler: &handlers.ProcedureHandler{Repo: store},
		UserHandler:      &handlers.UserHandler{Repo: store},
		Gate:             auth.NewGate(tokens, store),
	})
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	e, _ := newTestServer(t)

	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/health/live", "", nil).Code)
	require.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/health/ready", "", nil).Code)
}

// Full register-login-access flow through the real router and gate.
func TestRegisterLoginFlow(t *testing.T) {
	e, store := newTestServer(t)

	// First registered account becomes the admin bootstrap, so burn one.
	rec := do(t, e, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"username": "owner", "email": "owner@x.com", "password": "abcdef"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"username": "maria", "email": "m@x.com", "password": "abcdef"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, rec.Body.String(), "password")

	rec = do(t, e, http.MethodPost, "/api/v1/auth/login/json", "",
		map[string]string{"email": "m@x.com", "password": "abcdef"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.False(t, login.User.IsAdmin)

	// The token works on a user-gated endpoint.
	rec = do(t, e, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// But not on an admin-gated one.
	rec = do(t, e, http.MethodPost, "/api/v1/clients", login.AccessToken,
		map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// And without any token the gate challenges.
	rec = do(t, e, http.MethodPost, "/api/v1/clients", "", map[string]string{"name": "Ana"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	// A deactivated account keeps a verifiable token but loses access.
	require.NoError(t, store.DB.Model(&models.User{}).
		Where("email = ?", "m@x.com").Update("is_active", false).Error)
	rec = do(t, e, http.MethodGet, "/api/v1/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminFlow(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"username": "owner", "email": "owner@x.com", "password": "abcdef"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/v1/auth/login/json", "",
		map[string]string{"email": "owner@x.com", "password": "abcdef"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.True(t, login.User.IsAdmin, "first registered account is the bootstrap admin")

	rec = do(t, e, http.MethodPost, "/api/v1/clients", login.AccessToken,
		map[string]string{"name": "Maria Silva"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var client models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))

	rec = do(t, e, http.MethodPost, "/api/v1/procedures", login.AccessToken,
		map[string]interface{}{"client_id": client.ID, "date": "2024-01-15", "kind": "Coloring", "price": 150.0})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Reads stay open.
	rec = do(t, e, http.MethodGet, "/api/v1/clients", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, e, http.MethodGet, "/api/v1/procedures", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// User administration is admin-only.
	rec = do(t, e, http.MethodGet, "/api/v1/users", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, e, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
