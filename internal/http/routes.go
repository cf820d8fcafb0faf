package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions SessionServiceInterface
	Gate     AdminGateInterface
	SSO      SSOServiceInterface // nil disables the staff SSO routes

	BaseURL      string
	CookieDomain string
	Logger       *slog.Logger
	Renderer     *TemplateRenderer
}

// NewRouter wires the route surface with its guards. Requirements are static
// per route: public, requires-session, or requires-admin-gate. The session
// middleware wraps everything so public pages can render identity-aware
// navigation.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Sessions,
		Renderer:     services.Renderer,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	adminHandlers := &AdminHandlers{
		Gate:         services.Gate,
		Renderer:     services.Renderer,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	pageHandlers := &PageHandlers{Renderer: services.Renderer}

	requireSession := RequireSession()
	requireGate := RequireAdminGate(services.Gate)

	mux.HandleFunc("GET /", pageHandlers.Home)

	mux.HandleFunc("GET /login", authHandlers.LoginForm)
	mux.HandleFunc("POST /login", authHandlers.Login)
	mux.HandleFunc("GET /signup", authHandlers.SignupForm)
	mux.HandleFunc("POST /signup", authHandlers.Signup)
	mux.HandleFunc("POST /logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/status", authHandlers.Status)

	mux.Handle("GET /profile", requireSession(http.HandlerFunc(pageHandlers.Profile)))
	mux.Handle("GET /profile/orders", requireSession(http.HandlerFunc(pageHandlers.Orders)))

	mux.HandleFunc("GET /admin/login", adminHandlers.LoginForm)
	mux.HandleFunc("POST /admin/login", adminHandlers.Login)
	mux.Handle("GET /admin/dashboard", requireGate(http.HandlerFunc(adminHandlers.Dashboard)))
	mux.HandleFunc("POST /admin/lock", adminHandlers.Lock)

	if services.SSO != nil {
		ssoHandlers := &SSOHandlers{
			Svc:          services.SSO,
			BaseURL:      services.BaseURL,
			CookieDomain: services.CookieDomain,
			Logger:       services.Logger,
		}
		mux.HandleFunc("GET /auth/sso/login", ssoHandlers.Login)
		mux.HandleFunc("GET /auth/sso/callback", ssoHandlers.Callback)
	}

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	withSession := WithSession(SessionMiddlewareOptions{
		Sessions:     services.Sessions,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	})
	// Every mutating route is a cookie-authenticated form POST, so CSRF
	// protection wraps the whole surface rather than individual routes. It
	// sits outermost: a forged POST is rejected before any session or gate
	// lookup runs.
	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})
	return csrf(withSession(AnnotateAdminGate(services.Gate)(mux)))
}
