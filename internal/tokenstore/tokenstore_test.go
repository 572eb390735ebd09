package tokenstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, reqCookies ...*http.Cookie) (*Store, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range reqCookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	return New(w, req, Options{}), w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSetAccessToken_RoundTrip(t *testing.T) {
	s, w := newStore(t)
	s.SetAccessToken("T1")

	// visible to reads within the same exchange
	assert.Equal(t, "T1", s.Access())

	c := cookieByName(t, w, AccessCookie)
	require.NotNil(t, c)
	assert.Equal(t, "T1", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	// expires within one hour
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.Expires, time.Minute)
}

func TestSetRefreshToken_SevenDays(t *testing.T) {
	s, w := newStore(t)
	s.SetRefreshToken("R1")
	c := cookieByName(t, w, RefreshCookie)
	require.NotNil(t, c)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), c.Expires, time.Minute)
}

func TestReadsFromRequestCookies(t *testing.T) {
	s, _ := newStore(t,
		&http.Cookie{Name: AccessCookie, Value: "fromReq"},
		&http.Cookie{Name: RefreshCookie, Value: "r"},
		&http.Cookie{Name: AuthenticatedCookie, Value: "true"},
	)
	assert.Equal(t, "fromReq", s.Access())
	assert.Equal(t, "r", s.Refresh())
	assert.True(t, s.Authenticated())
}

func TestClear_RemovesAllThree(t *testing.T) {
	s, w := newStore(t,
		&http.Cookie{Name: AccessCookie, Value: "a"},
		&http.Cookie{Name: RefreshCookie, Value: "r"},
		&http.Cookie{Name: AuthenticatedCookie, Value: "true"},
	)
	s.Clear()

	for _, name := range []string{AccessCookie, RefreshCookie, AuthenticatedCookie} {
		c := cookieByName(t, w, name)
		require.NotNil(t, c, name)
		assert.Equal(t, "", c.Value, name)
		assert.Equal(t, -1, c.MaxAge, name)
	}
	// reads after clear see nothing, despite request cookies
	assert.Equal(t, "", s.Access())
	assert.Equal(t, "", s.Refresh())
	assert.False(t, s.Authenticated())
}

func TestSecureFlag(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s := New(w, req, Options{})
	s.SetAccessToken("x")
	assert.False(t, cookieByName(t, w, AccessCookie).Secure)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	s = New(w, req, Options{})
	s.SetAccessToken("x")
	assert.True(t, cookieByName(t, w, AccessCookie).Secure)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	s = New(w, req, Options{ForceSecure: true})
	s.SetAccessToken("x")
	assert.True(t, cookieByName(t, w, AccessCookie).Secure)
}

func TestJWTExpBoundsCookieLifetime(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	s, w := newStore(t)
	s.SetAccessToken(tok)
	c := cookieByName(t, w, AccessCookie)
	require.NotNil(t, c)
	// cookie must not outlive the token
	assert.WithinDuration(t, exp, c.Expires, time.Minute)
}

func TestOpaqueTokenUsesDefaultTTL(t *testing.T) {
	s, w := newStore(t)
	s.SetAccessToken("not-a-jwt")
	c := cookieByName(t, w, AccessCookie)
	require.NotNil(t, c)
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.Expires, time.Minute)
}

func TestAuthenticatedMarkerNotHttpOnly(t *testing.T) {
	s, w := newStore(t)
	s.SetAuthenticated()
	c := cookieByName(t, w, AuthenticatedCookie)
	require.NotNil(t, c)
	assert.Equal(t, "true", c.Value)
	assert.False(t, c.HttpOnly)
}
