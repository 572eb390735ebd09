package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountgate/accountgate/internal/models"
	"github.com/accountgate/accountgate/internal/tokenstore"
)

// profileMux fakes the guarded upstream surface. Token "user-tok" belongs to
// a user-role account, "admin-tok" to an admin.
func profileMux(t *testing.T) *http.ServeMux {
	t.Helper()
	profiles := map[string]models.UserProfile{
		"Bearer user-tok":  {ID: "1", Email: "a@b.com", Username: "alice", Picture: "old.png", Roles: "user", IsActive: true},
		"Bearer admin-tok": {ID: "2", Email: "root@b.com", Username: "root", Roles: "admin", IsActive: true},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(w http.ResponseWriter, r *http.Request) {
		u, ok := profiles[r.Header.Get("Authorization")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": u})
	})
	mux.HandleFunc("GET /api/profiles", func(w http.ResponseWriter, r *http.Request) {
		all := []models.UserProfile{profiles["Bearer user-tok"], profiles["Bearer admin-tok"]}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": all})
	})
	mux.HandleFunc("PATCH /api/profile", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Profile updated",
			"data":    map[string]string{"username": req["username"], "birthDate": req["birthDate"]},
		})
	})
	mux.HandleFunc("PUT /api/user/password", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Password changed"})
	})
	mux.HandleFunc("PUT /api/profile/profile-picture", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Picture updated",
			"data":    map[string]string{"picture": "x.png"},
		})
	})
	return mux
}

func userCookie() *http.Cookie {
	return &http.Cookie{Name: tokenstore.AccessCookie, Value: "user-tok"}
}

func adminCookie() *http.Cookie {
	return &http.Cookie{Name: tokenstore.AccessCookie, Value: "admin-tok"}
}

func TestGetProfile_ReturnsHydratedUser(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))
	w := doJSON(r, http.MethodGet, "/api/profile", "", userCookie())
	require.Equal(t, http.StatusOK, w.Code)

	var out models.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "alice", out.Data.Username)
}

func TestGetProfiles_AdminOnly(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))

	w := doJSON(r, http.MethodGet, "/api/profiles", "", adminCookie())
	require.Equal(t, http.StatusOK, w.Code)
	var out models.ProfilesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Data, 2)

	w = doJSON(r, http.MethodGet, "/api/profiles", "", userCookie())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
}

func TestUpdateProfile_PatchesSessionState(t *testing.T) {
	r, state := buildGateway(t, profileMux(t))

	w := doJSON(r, http.MethodPatch, "/api/profile",
		`{"username":"newname","birthDate":"1990-04-02"}`, userCookie())
	require.Equal(t, http.StatusOK, w.Code)

	u, ok := state.User()
	require.True(t, ok, "authenticated flag must survive a profile update")
	assert.Equal(t, "newname", u.Username)
	assert.Equal(t, "1990-04-02", u.BirthDate)
	// untouched fields survive
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, "old.png", u.Picture)
}

func TestUpdateProfile_ValidationStopsBadUsername(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))
	w := doJSON(r, http.MethodPatch, "/api/profile",
		`{"username":"_bad_","birthDate":"1990-04-02"}`, userCookie())
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env models.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.IsFieldErrors())
	assert.Equal(t, "username", env.Fields[0].Property)
}

func TestUpdateProfile_AdminRoleForbidden(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))
	w := doJSON(r, http.MethodPatch, "/api/profile",
		`{"username":"newname","birthDate":"1990-04-02"}`, adminCookie())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChangePassword_MismatchRejected(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))
	w := doJSON(r, http.MethodPut, "/api/user/password",
		`{"currentPassword":"Old123!","newPassword":"New123!","confirmPassword":"Nope12!"}`, userCookie())
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Confirm Password must match with new password")
}

func TestChangePassword_Success(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))
	w := doJSON(r, http.MethodPut, "/api/user/password",
		`{"currentPassword":"Old123!","newPassword":"New123!","confirmPassword":"New123!"}`, userCookie())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password changed")
}

func TestUpdateProfilePicture_PatchesPictureOnly(t *testing.T) {
	r, state := buildGateway(t, profileMux(t))

	w := doJSON(r, http.MethodPut, "/api/profile/profile-picture", "fake-multipart-bytes", userCookie())
	require.Equal(t, http.StatusOK, w.Code)

	u, ok := state.User()
	require.True(t, ok)
	assert.Equal(t, "x.png", u.Picture)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@b.com", u.Email)
}

func TestDashboard_Views(t *testing.T) {
	r, _ := buildGateway(t, profileMux(t))

	w := doJSON(r, http.MethodGet, "/dashboard", "", userCookie())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"user"`)

	w = doJSON(r, http.MethodGet, "/dashboard", "", adminCookie())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"admin"`)

	// profile page is user-only
	w = doJSON(r, http.MethodGet, "/dashboard/profile", "", adminCookie())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodGet, "/dashboard/profile", "", userCookie())
	assert.Equal(t, http.StatusOK, w.Code)
}
