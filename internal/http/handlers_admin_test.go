package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockauth "github.com/carhub/carhub-web/internal/mocks/auth"
)

func adminGateCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == AdminGateCookieName {
			return c
		}
	}
	return nil
}

func postAdminLogin(router http.Handler, email, password string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	addCSRF(r)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestAdminLogin_CorrectPairUnlocksDashboard(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	w := postAdminLogin(router, "admin@carhub.local", "admin123")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	cookie := adminGateCookie(t, w)
	require.NotNil(t, cookie)

	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Admin dashboard")
}

func TestAdminLogin_WrongPairStaysLocked(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@carhub.local", "nope"},
		{"case-shifted email", "Admin@carhub.local", "admin123"},
		{"padded password", "admin@carhub.local", " admin123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postAdminLogin(router, tt.email, tt.password)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Nil(t, adminGateCookie(t, w))
			assert.Contains(t, w.Body.String(), "Invalid admin credentials.")
		})
	}
}

func TestAdminDashboard_LockedWithoutGrant(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestAdminLoginForm_BouncesWhenAlreadyUnlocked(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	w := postAdminLogin(router, "admin@carhub.local", "admin123")
	cookie := adminGateCookie(t, w)
	require.NotNil(t, cookie)

	r := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestHome_ShowsAdminEntryWhenGateUnlocked(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `href="/admin/dashboard"`)

	unlocked := postAdminLogin(router, "admin@carhub.local", "admin123")
	cookie := adminGateCookie(t, unlocked)
	require.NotNil(t, cookie)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// The grant on this browser surfaces the admin entry even without a
	// marketplace session.
	assert.Contains(t, w.Body.String(), `href="/admin/dashboard"`)
}

func TestAdminLock_RevokesGrant(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	w := postAdminLogin(router, "admin@carhub.local", "admin123")
	cookie := adminGateCookie(t, w)
	require.NotNil(t, cookie)

	r := httptest.NewRequest(http.MethodPost, "/admin/lock", nil)
	addCSRF(r)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusSeeOther, w.Code)

	// The old token no longer opens the gate.
	r = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}
