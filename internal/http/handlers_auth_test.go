package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
	mockauth "github.com/carhub/carhub-web/internal/mocks/auth"
	"github.com/carhub/carhub-web/internal/ports"
	"github.com/carhub/carhub-web/internal/service"
)

// testRouter wires the full router over in-memory stores and a configurable
// gateway double, close to how bootstrap assembles it.
func testRouter(t *testing.T, gw *mockauth.FuncGateway) (http.Handler, *mockauth.MemorySessionStore) {
	t.Helper()

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.NoError(t, err)

	sessions := mockauth.NewMemorySessionStore()
	sessionSvc := service.NewSessionService(service.SessionServiceOptions{
		Gateway:    gw,
		Sessions:   sessions,
		SessionTTL: time.Hour,
	})
	gateSvc := service.NewAdminGateService(service.AdminGateServiceOptions{
		Grants:   mockauth.NewMemoryAdminGateStore(),
		Email:    "admin@carhub.local",
		Password: "admin123",
	})

	router := NewRouter(RouterServices{
		Sessions: sessionSvc,
		Gate:     gateSvc,
		BaseURL:  "http://localhost:8080",
		Renderer: renderer,
	})
	return router, sessions
}

const testCSRFToken = "test-csrf-token"

// addCSRF satisfies the double-submit check the way a script would, echoing
// the cookie token in the header. The form-field path is covered separately.
func addCSRF(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRFToken})
	r.Header.Set(CSRFHeaderName, testCSRFToken)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginForm_RendersWithRedirectURI(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	r := httptest.NewRequest(http.MethodGet, "/login?redirect_uri=%2Fprofile", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="redirect_uri" value="/profile"`)
	// First contact mints a session cookie.
	assert.NotNil(t, sessionCookie(t, w))
}

func TestLogin_SuccessRedirectsToOrigin(t *testing.T) {
	gw := &mockauth.FuncGateway{
		LoginFunc: func(_ context.Context, creds ports.Credentials, upstream []domainauth.UpstreamCookie) (ports.LoginResult, error) {
			return ports.LoginResult{
				Identity: domainauth.Identity{UserID: "u1", Name: "Ada", Email: creds.Email, Role: domainauth.RoleUser},
				Upstream: []domainauth.UpstreamCookie{{Name: "connect.sid", Value: "abc"}},
			}, nil
		},
	}
	router, sessions := testRouter(t, gw)

	form := url.Values{
		"email":        {"ada@example.com"},
		"password":     {"pw"},
		"redirect_uri": {"/profile/orders"},
	}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	addCSRF(r)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/orders", w.Header().Get("Location"))

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	stored, err := sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.NotNil(t, stored.Identity)
	assert.Equal(t, "u1", stored.Identity.UserID)
	assert.Equal(t, []domainauth.UpstreamCookie{{Name: "connect.sid", Value: "abc"}}, stored.Upstream)
}

func TestLogin_FailureRerendersFormWithMessage(t *testing.T) {
	gw := &mockauth.FuncGateway{
		LoginFunc: func(context.Context, ports.Credentials, []domainauth.UpstreamCookie) (ports.LoginResult, error) {
			return ports.LoginResult{}, apperrors.Unauthorized("Invalid email or password.")
		},
	}
	router, _ := testRouter(t, gw)

	form := url.Values{"email": {"ada@example.com"}, "password": {"bad"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	addCSRF(r)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password.")
	// Email is echoed back, password is not.
	assert.Contains(t, w.Body.String(), `value="ada@example.com"`)
	assert.NotContains(t, w.Body.String(), "bad")
}

func TestSignup_SuccessRedirectsToLoginWithoutSession(t *testing.T) {
	router, sessions := testRouter(t, &mockauth.FuncGateway{})

	form := url.Values{
		"name":     {"Ada"},
		"email":    {"ada@example.com"},
		"password": {"pw"},
		"role":     {"mechanic"},
	}
	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	addCSRF(r)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?registered=1", w.Header().Get("Location"))

	// Registration never signs the visitor in.
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	stored, err := sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Nil(t, stored.Identity)
}

func TestSignup_DuplicateAccountRerenders(t *testing.T) {
	gw := &mockauth.FuncGateway{
		SignupFunc: func(context.Context, ports.SignupRequest, []domainauth.UpstreamCookie) (ports.CallResult, error) {
			return ports.CallResult{}, apperrors.Validation("Email already registered.")
		},
	}
	router, _ := testRouter(t, gw)

	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"pw"}}
	r := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	addCSRF(r)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered.")
}

func TestLogout_ClearsCookieAndSession(t *testing.T) {
	gw := &mockauth.FuncGateway{
		CheckStatusFunc: func(_ context.Context, upstream []domainauth.UpstreamCookie) (ports.StatusResult, error) {
			return ports.StatusResult{
				LoggedIn: true,
				Identity: &domainauth.Identity{UserID: "u1", Role: domainauth.RoleUser},
			}, nil
		},
	}
	router, sessions := testRouter(t, gw)

	// Establish a checked, logged-in session.
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	require.Equal(t, 1, sessions.Len())

	r = httptest.NewRequest(http.MethodPost, "/logout", nil)
	addCSRF(r)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	// The old record is gone; the middleware may have minted a fresh
	// anonymous session for the request itself.
	_, err := sessions.Get(context.Background(), cookie.Value)
	assert.Error(t, err)
}

func TestLogout_UpstreamFailureStillClearsLocally(t *testing.T) {
	gw := &mockauth.FuncGateway{
		LogoutFunc: func(context.Context, []domainauth.UpstreamCookie) (ports.CallResult, error) {
			return ports.CallResult{}, apperrors.Unavailable("logout rejected")
		},
	}
	router, sessions := testRouter(t, gw)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)

	r = httptest.NewRequest(http.MethodPost, "/logout", nil)
	addCSRF(r)
	r.Header.Set("Accept", "text/html")
	r.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?logout=partial", w.Header().Get("Location"))
	_, err := sessions.Get(context.Background(), cookie.Value)
	assert.Error(t, err)
}

func TestAuthStatus_ReportsSessionState(t *testing.T) {
	gw := &mockauth.FuncGateway{
		CheckStatusFunc: func(context.Context, []domainauth.UpstreamCookie) (ports.StatusResult, error) {
			return ports.StatusResult{
				LoggedIn: true,
				Identity: &domainauth.Identity{UserID: "u1", Name: "Ada", Email: "ada@example.com", Role: domainauth.RoleUser},
			}, nil
		},
	}
	router, _ := testRouter(t, gw)

	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loggedIn":true`)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)
}

func TestAuthStatus_AnonymousWhenUpstreamDown(t *testing.T) {
	gw := &mockauth.FuncGateway{
		CheckStatusFunc: func(context.Context, []domainauth.UpstreamCookie) (ports.StatusResult, error) {
			return ports.StatusResult{}, apperrors.Unavailable("marketplace API unreachable")
		},
	}
	router, _ := testRouter(t, gw)

	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loggedIn":false`)
}

func TestGuardedRoutes_EndToEnd(t *testing.T) {
	gw := &mockauth.FuncGateway{
		CheckStatusFunc: func(context.Context, []domainauth.UpstreamCookie) (ports.StatusResult, error) {
			return ports.StatusResult{LoggedIn: false}, nil
		},
	}
	router, _ := testRouter(t, gw)

	r := httptest.NewRequest(http.MethodGet, "/profile", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fprofile", w.Header().Get("Location"))
}

func TestLogin_FormCarriesCSRFTokenRoundTrip(t *testing.T) {
	gw := &mockauth.FuncGateway{
		LoginFunc: func(_ context.Context, creds ports.Credentials, _ []domainauth.UpstreamCookie) (ports.LoginResult, error) {
			return ports.LoginResult{
				Identity: domainauth.Identity{UserID: "u1", Email: creds.Email, Role: domainauth.RoleUser},
			}, nil
		},
	}
	router, _ := testRouter(t, gw)

	// The rendered form embeds the token the cookie carries.
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var csrfCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookieName {
			csrfCookie = c
		}
	}
	require.NotNil(t, csrfCookie)
	assert.Contains(t, w.Body.String(), `name="csrf_token" value="`+csrfCookie.Value+`"`)

	// Submitting the form with that token passes the guard.
	form := url.Values{
		"email":      {"ada@example.com"},
		"password":   {"pw"},
		"csrf_token": {csrfCookie.Value},
	}
	r = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	r.AddCookie(csrfCookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestMutatingRoutes_RejectCrossSitePost(t *testing.T) {
	router, sessions := testRouter(t, &mockauth.FuncGateway{})

	// A hostile page can make the browser send cookies but cannot read the
	// CSRF cookie into the form.
	for _, path := range []string{"/login", "/signup", "/logout", "/admin/login", "/admin/lock"} {
		t.Run(path, func(t *testing.T) {
			form := url.Values{"email": {"victim@example.com"}, "password": {"pw"}}
			r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			r.Header.Set("Accept", "text/html")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
	assert.Equal(t, 0, sessions.Len())
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t, &mockauth.FuncGateway{})

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
