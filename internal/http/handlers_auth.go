package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
	"github.com/carhub/carhub-web/internal/ports"
)

// SessionServiceInterface defines the session operations the handlers need.
type SessionServiceInterface interface {
	EnsureSession(ctx context.Context, sessionID string) (domainauth.Session, error)
	CheckStatus(ctx context.Context, sessionID string) (domainauth.Session, error)
	Login(ctx context.Context, sessionID string, creds ports.Credentials) (domainauth.Session, error)
	Signup(ctx context.Context, sessionID string, req ports.SignupRequest) (string, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides the login/signup/logout/status HTTP handlers.
type AuthHandlers struct {
	Svc          SessionServiceInterface
	Renderer     *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookies() cookieWriter {
	return cookieWriter{Domain: h.CookieDomain}
}

// LoginForm renders the login page.
// GET /login?redirect_uri=<optional same-origin path>.
func (h *AuthHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if identity := IdentityFromContext(r.Context()); identity != nil {
		http.Redirect(w, r, safeRedirectPath(r.URL.Query().Get("redirect_uri")), http.StatusSeeOther)
		return
	}

	data := NewPageData(r, "Log in")
	data.RedirectURI = safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if r.URL.Query().Get("registered") == "1" {
		data.Flash = "Account created. Please log in."
	}
	_ = h.Renderer.RenderPage(w, "page_login", data)
}

// Login submits the credential form to the marketplace API.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	redirectURI := safeRedirectPath(r.PostFormValue("redirect_uri"))
	creds := ports.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	sess, err := h.Svc.Login(r.Context(), requestSessionID(r), creds)
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "error", err)
		data := NewPageData(r, "Log in")
		data.RedirectURI = redirectURI
		data.FormError = apperrors.UserMessage(err)
		data.Form["email"] = creds.Email
		w.WriteHeader(statusForCode(apperrors.GetCode(err)))
		_ = h.Renderer.RenderPage(w, "page_login", data)
		return
	}

	h.cookies().SetSessionCookie(w, r, sess)
	http.Redirect(w, r, redirectURI, http.StatusSeeOther)
}

// SignupForm renders the registration page.
// GET /signup.
func (h *AuthHandlers) SignupForm(w http.ResponseWriter, r *http.Request) {
	data := NewPageData(r, "Sign up")
	data.Form["role"] = string(domainauth.RoleUser)
	_ = h.Renderer.RenderPage(w, "page_signup", data)
}

// Signup submits the registration form. Registration never signs the visitor
// in; on success they are sent to the login form.
// POST /signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := ports.SignupRequest{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Phone:    r.PostFormValue("phone"),
		Role:     signupRole(r.PostFormValue("role")),
	}

	_, err := h.Svc.Signup(r.Context(), requestSessionID(r), req)
	if err != nil {
		h.logger().InfoContext(r.Context(), "signup rejected", "error", err)
		data := NewPageData(r, "Sign up")
		data.FormError = apperrors.UserMessage(err)
		data.Form["name"] = req.Name
		data.Form["email"] = req.Email
		data.Form["phone"] = req.Phone
		data.Form["role"] = string(req.Role)
		w.WriteHeader(statusForCode(apperrors.GetCode(err)))
		_ = h.Renderer.RenderPage(w, "page_signup", data)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// signupRole narrows the submitted role to the values the form offers.
func signupRole(raw string) domainauth.Role {
	if raw == string(domainauth.RoleMechanic) {
		return domainauth.RoleMechanic
	}
	return domainauth.RoleUser
}

// Logout ends the session. The local cookie and record are cleared even when
// the upstream call fails; the failure only changes the landing message.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.Logout(r.Context(), requestSessionID(r))
	h.cookies().ClearCookie(w, r, SessionCookieName)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "upstream logout failed", "error", err)
		http.Redirect(w, r, "/?logout=partial", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Status reports the session state as JSON for scripts on the pages.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}
	body := map[string]any{"loggedIn": session.IsAuthenticated()}
	if session.Identity != nil {
		body["user"] = session.Identity
	}
	WriteJSON(w, http.StatusOK, body)
}
