package tokenstore

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names shared with the browser. isAuthenticated is a plain marker the
// frontend may read; the token cookies are HttpOnly.
const (
	AccessCookie        = "accessToken"
	RefreshCookie       = "refreshToken"
	AuthenticatedCookie = "isAuthenticated"
)

// Options control cookie lifetimes and security attributes.
type Options struct {
	AccessTTL  time.Duration // default 1h
	RefreshTTL time.Duration // default 7d
	// ForceSecure marks cookies Secure even on plain-HTTP requests (TLS
	// terminated upstream of the gateway).
	ForceSecure bool
}

func (o Options) withDefaults() Options {
	if o.AccessTTL <= 0 {
		o.AccessTTL = time.Hour
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 7 * 24 * time.Hour
	}
	return o
}

// Store reads and writes the token cookies of one request/response exchange.
// Writes are also kept in an in-memory overlay so a token stored mid-request
// (the refresh path) is visible to later reads in the same exchange.
type Store struct {
	r       *http.Request
	w       http.ResponseWriter
	opts    Options
	overlay map[string]string
}

// New binds a store to a single request/response pair.
func New(w http.ResponseWriter, r *http.Request, opts Options) *Store {
	return &Store{r: r, w: w, opts: opts.withDefaults(), overlay: map[string]string{}}
}

func (s *Store) secure() bool {
	if s.opts.ForceSecure {
		return true
	}
	if s.r.TLS != nil {
		return true
	}
	return strings.EqualFold(s.r.Header.Get("X-Forwarded-Proto"), "https")
}

func (s *Store) set(name, value string, expires time.Time) {
	s.overlay[name] = value
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   s.secure(),
		HttpOnly: name != AuthenticatedCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Store) get(name string) string {
	if v, ok := s.overlay[name]; ok {
		return v
	}
	c, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetAccessToken persists the access token for one hour, or less when the
// token is a JWT whose exp claim lands earlier.
func (s *Store) SetAccessToken(token string) {
	exp := time.Now().Add(s.opts.AccessTTL)
	if e, ok := tokenExpiry(token); ok && e.Before(exp) {
		exp = e
	}
	s.set(AccessCookie, token, exp)
}

// SetRefreshToken persists the refresh token for seven days.
func (s *Store) SetRefreshToken(token string) {
	exp := time.Now().Add(s.opts.RefreshTTL)
	if e, ok := tokenExpiry(token); ok && e.Before(exp) {
		exp = e
	}
	s.set(RefreshCookie, token, exp)
}

// SetAuthenticated marks the browser session authenticated. The marker lives
// as long as the refresh token: once the refresh token is gone the flag is
// meaningless anyway.
func (s *Store) SetAuthenticated() {
	s.set(AuthenticatedCookie, "true", time.Now().Add(s.opts.RefreshTTL))
}

// Clear removes both tokens and the authenticated marker in one pass.
func (s *Store) Clear() {
	for _, name := range []string{AccessCookie, RefreshCookie, AuthenticatedCookie} {
		s.overlay[name] = ""
		http.SetCookie(s.w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   s.secure(),
			HttpOnly: name != AuthenticatedCookie,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// Access returns the current access token, empty when absent.
func (s *Store) Access() string { return s.get(AccessCookie) }

// Refresh returns the current refresh token, empty when absent.
func (s *Store) Refresh() string { return s.get(RefreshCookie) }

// Authenticated reports whether the marker cookie is set.
func (s *Store) Authenticated() bool { return s.get(AuthenticatedCookie) == "true" }

// tokenExpiry extracts exp from a JWT without verifying the signature.
// Tokens are opaque to the gateway; this only bounds cookie lifetimes so a
// cookie never outlives its token.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
