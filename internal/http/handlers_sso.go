package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/service"
)

// SSOServiceInterface defines the staff SSO operations the handlers need.
type SSOServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (domainauth.Session, error)
}

// SSOHandlers provides the staff single sign-on handlers.
type SSOHandlers struct {
	Svc          SSOServiceInterface
	BaseURL      string // public base URL of this web client
	CookieDomain string
	Logger       *slog.Logger
}

func (h *SSOHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *SSOHandlers) cookies() cookieWriter {
	return cookieWriter{Domain: h.CookieDomain}
}

// Login starts the SSO flow and redirects to the identity provider.
// GET /auth/sso/login?redirect_uri=<optional same-origin path>.
func (h *SSOHandlers) Login(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.BeginLogin(r.Context(), h.BaseURL+"/auth/sso/callback")
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso begin failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "sso_failed",
			Err:     errors.New("could not start staff sign-in"),
		})
		return
	}

	cookies := h.cookies()
	cookies.setShortLivedCookie(w, r, ssoStateCookie, result.State)
	cookies.setShortLivedCookie(w, r, ssoNonceCookie, result.Nonce)
	cookies.setShortLivedCookie(w, r, ssoRedirectCookie, safeRedirectPath(r.URL.Query().Get("redirect_uri")))

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the SSO flow: verifies the state handoff, exchanges the
// code, and installs the session cookie.
// GET /auth/sso/callback?code=<code>&state=<state>.
func (h *SSOHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_callback",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(ssoStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(ssoNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce"),
		})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso exchange failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "sso_failed",
			Err:     errors.New("staff sign-in failed"),
		})
		return
	}

	cookies := h.cookies()
	redirectURI := "/"
	if redirectCookie, cookieErr := r.Cookie(ssoRedirectCookie); cookieErr == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
	}
	cookies.ClearCookie(w, r, ssoStateCookie)
	cookies.ClearCookie(w, r, ssoNonceCookie)
	cookies.ClearCookie(w, r, ssoRedirectCookie)
	cookies.SetSessionCookie(w, r, sess)

	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}
