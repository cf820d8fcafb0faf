package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName is the cookie carrying the double-submit CSRF token.
	CSRFCookieName = "chw_csrf"
	// CSRFHeaderName is the header checked for the token (canonical form).
	CSRFHeaderName = "X-Csrf-Token"
	// CSRFFormField is the hidden form field checked for the token.
	CSRFFormField = "csrf_token"

	csrfTokenLength = 32
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieDomain is the domain for the CSRF cookie.
	CookieDomain string
}

// CSRFProtection protects the form surface against cross-site request
// forgery using the double-submit cookie pattern: a random token lives in a
// cookie, and every state-changing request must echo it back in the
// csrf_token form field or the X-Csrf-Token header. GET, HEAD, OPTIONS and
// TRACE are exempt. The token is placed in the request context so page
// templates can render it into their forms.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrfTokenFromCookie(r)
			if token == "" {
				generated, err := generateCSRFToken()
				if err != nil {
					// Fail closed rather than fall back to a predictable token.
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				token = generated
				setCSRFCookie(w, r, cfg.CookieDomain, token)
			}

			r = r.WithContext(setCSRFTokenInContext(r.Context(), token))

			if requiresCSRFValidation(r.Method) && !validateCSRFToken(r, token) {
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation reports whether the method changes state. Safe
// methods (GET, HEAD, OPTIONS, TRACE) are exempt.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func csrfTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func setCSRFCookie(w http.ResponseWriter, r *http.Request, domain, token string) {
	cw := cookieWriter{Domain: domain}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Domain:   domain,
		HttpOnly: false, // Readable by page scripts that echo it in X-Csrf-Token
		Secure:   cw.isSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   3600 * 12,
	})
}

// validateCSRFToken compares the submitted token against the cookie value in
// constant time. The header wins over the form field when both are present.
func validateCSRFToken(r *http.Request, cookieToken string) bool {
	if cookieToken == "" {
		return false
	}

	if headerToken := r.Header.Get(CSRFHeaderName); headerToken != "" {
		return subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return false
		}
		if formToken := r.FormValue(CSRFFormField); formToken != "" {
			return subtle.ConstantTimeCompare([]byte(formToken), []byte(cookieToken)) == 1
		}
	}

	return false
}

// csrfTokenKey is an unexported context key type for CSRF token storage.
type csrfTokenKey struct{}

func setCSRFTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

// GetCSRFToken returns the request's CSRF token for template rendering, or ""
// when the middleware did not run.
func GetCSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
