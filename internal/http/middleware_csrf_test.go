package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func csrfCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	return nil
}

func TestCSRFProtection_GetSetsCookieAndContextToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := csrfCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	// The handler sees the same token the cookie carries.
	assert.Equal(t, cookie.Value, w.Body.String())
}

func TestCSRFProtection_ExistingCookieIsReused(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing-token"})
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, csrfCookieFrom(t, w))
	assert.Equal(t, "existing-token", w.Body.String())
}

func TestCSRFProtection_PostWithoutTokenForbidden(t *testing.T) {
	form := url.Values{"email": {"ada@example.com"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_PostWithMatchingFormToken(t *testing.T) {
	form := url.Values{CSRFFormField: {"token-1"}}
	r := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-1"})
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_PostWithMatchingHeaderToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-1"})
	r.Header.Set(CSRFHeaderName, "token-1")
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFProtection_PostWithMismatchedTokenForbidden(t *testing.T) {
	form := url.Values{CSRFFormField: {"forged"}}
	r := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-1"})
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFProtection_CookieAloneIsNotEnough(t *testing.T) {
	// A cross-site form post carries the cookie but cannot read it into a field.
	form := url.Values{"email": {"victim@example.com"}}
	r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-1"})
	w := httptest.NewRecorder()
	csrfHandler().ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
