package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salonsys/salon-admin/internal/models"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin()
	registerMaria(t, env)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/users", nil)
	require.NoError(t, env.Users.ListUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestPatchUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin()
	registerMaria(t, env)

	maria, err := env.Repo.FindUserByEmail(context.Background(), "m@x.com")
	require.NoError(t, err)
	require.False(t, maria.IsAdmin)

	rec, c := env.doJSONRequest(http.MethodPatch, "/api/v1/users/1",
		map[string]interface{}{"is_admin": true})
	c.SetParamNames("id")
	c.SetParamValues(itoa(maria.ID))
	require.NoError(t, env.Users.PatchUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.True(t, user.IsAdmin)
	require.True(t, user.IsActive, "omitted flags stay untouched")

	rec, c = env.doJSONRequest(http.MethodPatch, "/api/v1/users/1",
		map[string]interface{}{"is_active": false})
	c.SetParamNames("id")
	c.SetParamValues(itoa(maria.ID))
	require.NoError(t, env.Users.PatchUser(c))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.False(t, user.IsActive)
	require.True(t, user.IsAdmin)
}

func TestPatchUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPatch, "/api/v1/users/9999",
		map[string]interface{}{"is_active": false})
	c.SetParamNames("id")
	c.SetParamValues("9999")
	requireHTTPError(t, env.Users.PatchUser(c), http.StatusNotFound)
}
