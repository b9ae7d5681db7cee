package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salonsys/salon-admin/internal/hash"
	"github.com/salonsys/salon-admin/internal/models"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/storage"
	"github.com/salonsys/salon-admin/internal/token"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.Repo
	Tokens *token.Service
	Auth   *AuthHandler
	Client *ClientHandler
	Proc   *ProcedureHandler
	Users  *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		T:      t,
		E:      echo.New(),
		Repo:   store,
		Tokens: tokens,
		Auth:   &AuthHandler{Repo: store, Tokens: tokens},
		Client: &ClientHandler{Repo: store, Photos: photos},
		Proc:   &ProcedureHandler{Repo: store},
		Users:  &UserHandler{Repo: store},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// seedAdmin inserts an account directly so the registration bootstrap
// (first user becomes admin) does not interfere with the case under test.
func (env *testEnv) seedAdmin() *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("admin-password")
	require.NoError(env.T, err)

	u := &models.User{
		Username:     "owner",
		Email:        "owner@x.com",
		PasswordHash: pwHash,
		IsActive:     true,
		IsAdmin:      true,
	}
	require.NoError(env.T, env.Repo.DB.Create(u).Error)
	return u
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
