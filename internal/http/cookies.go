package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

// Cookie names used by the web client. The session cookie carries the opaque
// session ID; the admin gate cookie carries a grant token for the parallel
// admin credential path.
const (
	SessionCookieName   = "chw_session"
	AdminGateCookieName = "chw_admin_gate"

	ssoStateCookie    = "sso_state"
	ssoNonceCookie    = "sso_nonce"
	ssoRedirectCookie = "post_login_redirect"
)

// cookieWriter centralizes cookie attributes (domain, secure detection).
type cookieWriter struct {
	Domain string
}

func (c cookieWriter) isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// SetSessionCookie writes the session cookie based on the session's expiry.
func (c cookieWriter) SetSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// SetAdminGateCookie writes the admin gate grant token. Grants have no
// expiry, so the cookie is a long-lived one rather than a session cookie.
func (c cookieWriter) SetAdminGateCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminGateCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})
}

// setShortLivedCookie writes a 10-minute cookie for SSO state handoff.
func (c cookieWriter) setShortLivedCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
}

// ClearCookie expires the named cookie.
func (c cookieWriter) ClearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// sessionIDFromRequest returns the session cookie value, or "" when absent.
func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requestSessionID returns the resolved session's ID from context, falling
// back to the cookie when the session middleware did not run. Preferring the
// context means a session minted earlier in this same request is reused.
func requestSessionID(r *http.Request) string {
	if sess, ok := GetSessionFromContext(r.Context()); ok {
		return sess.ID
	}
	return sessionIDFromRequest(r)
}

// adminGateTokenFromRequest returns the admin gate cookie value, or "".
func adminGateTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(AdminGateCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	// Browsers normalize backslashes to slashes, so "/\evil.example" would
	// become a protocol-relative redirect after parsing cleanly here.
	if strings.Contains(candidate, `\`) || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
