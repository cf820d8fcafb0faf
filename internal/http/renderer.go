package httpx

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

//go:embed templates
var templateFS embed.FS

// TemplateRenderer renders HTML pages from embedded templates.
type TemplateRenderer struct {
	t      *template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Optional, defaults to the embedded templates
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	fsys := cfg.TemplateFS
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t, err := template.New("root").ParseFS(fsys, "*.tmpl", "pages/*.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err))
		return nil, err
	}
	return &TemplateRenderer{t: t, logger: logger}, nil
}

// PageData is the payload every page template receives.
type PageData struct {
	Title    string
	Identity *domainauth.Identity
	Nav      []NavEntry
	// Flash is a one-off notice (e.g. "Account created, please log in").
	Flash string
	// FormError is a user-safe error shown above the form.
	FormError string
	// Form echoes submitted values back into the form on error.
	Form map[string]string
	// RedirectURI is threaded through the login form for return-to-origin.
	RedirectURI string
	// CSRFToken is echoed as a hidden field by every form.
	CSRFToken string
	// Extra carries page-specific data.
	Extra any
}

// NewPageData builds the common page payload from the request context.
func NewPageData(r *http.Request, title string) PageData {
	identity := IdentityFromContext(r.Context())
	return PageData{
		Title:     title,
		Identity:  identity,
		Nav:       BuildNav(identity, AdminGateUnlocked(r.Context())),
		CSRFToken: GetCSRFToken(r),
		Form:      map[string]string{},
	}
}

// RenderPage renders the named page template inside the layout. The page is
// buffered so a mid-render failure produces a clean 500 instead of a torn
// response.
func (tr *TemplateRenderer) RenderPage(w http.ResponseWriter, name string, data PageData) error {
	if tr == nil || tr.t == nil {
		return errors.New("renderer not initialized")
	}

	var buf bytes.Buffer
	if err := tr.t.ExecuteTemplate(&buf, name, data); err != nil {
		tr.logger.Error("template render failed", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
