package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
)

// AdminGateInterface defines the admin gate operations the handlers need.
type AdminGateInterface interface {
	Unlock(ctx context.Context, email, password string) (domainauth.AdminGrant, error)
	Verify(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

// AdminHandlers provides the admin gate HTTP handlers. The gate is a
// credential path parallel to the marketplace session: unlocking it neither
// requires nor creates a user session.
type AdminHandlers struct {
	Gate         AdminGateInterface
	Renderer     *TemplateRenderer
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginForm renders the admin credential form.
// GET /admin/login.
func (h *AdminHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if unlocked, err := h.Gate.Verify(r.Context(), adminGateTokenFromRequest(r)); err == nil && unlocked {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	_ = h.Renderer.RenderPage(w, "page_admin_login", NewPageData(r, "Admin access"))
}

// Login checks the submitted pair and on a match persists a grant and sets
// the gate cookie.
// POST /admin/login.
func (h *AdminHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	grant, err := h.Gate.Unlock(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		h.logger().InfoContext(r.Context(), "admin gate unlock rejected")
		data := NewPageData(r, "Admin access")
		data.FormError = apperrors.UserMessage(err)
		w.WriteHeader(statusForCode(apperrors.GetCode(err)))
		_ = h.Renderer.RenderPage(w, "page_admin_login", data)
		return
	}

	cookieWriter{Domain: h.CookieDomain}.SetAdminGateCookie(w, r, grant.Token)
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Dashboard renders the admin area. Reached only through RequireAdminGate.
// GET /admin/dashboard.
func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	_ = h.Renderer.RenderPage(w, "page_admin_dashboard", NewPageData(r, "Admin dashboard"))
}

// Lock revokes the grant and clears the cookie. The gate design routes no
// UI to this; it exists for operational cleanup.
// POST /admin/lock.
func (h *AdminHandlers) Lock(w http.ResponseWriter, r *http.Request) {
	token := adminGateTokenFromRequest(r)
	if err := h.Gate.Revoke(r.Context(), token); err != nil {
		h.logger().ErrorContext(r.Context(), "admin gate revoke failed", "error", err)
	}
	cookieWriter{Domain: h.CookieDomain}.ClearCookie(w, r, AdminGateCookieName)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
