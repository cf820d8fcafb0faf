package httpx

import (
	"net/http"
)

// PageHandlers renders the plain content pages.
type PageHandlers struct {
	Renderer *TemplateRenderer
}

// Home renders the landing page.
// GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	// The mux treats "/" as a catch-all; anything else under it is a 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := NewPageData(r, "CarHub")
	if r.URL.Query().Get("logout") == "partial" {
		data.Flash = "You are logged out on this browser, but the marketplace could not be reached to end the session there."
	}
	_ = h.Renderer.RenderPage(w, "page_home", data)
}

// Profile renders the visitor's profile. Reached only through RequireSession.
// GET /profile.
func (h *PageHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	_ = h.Renderer.RenderPage(w, "page_profile", NewPageData(r, "Profile"))
}

// Orders renders the visitor's order list. Reached only through RequireSession.
// GET /profile/orders.
func (h *PageHandlers) Orders(w http.ResponseWriter, r *http.Request) {
	_ = h.Renderer.RenderPage(w, "page_orders", NewPageData(r, "My Orders"))
}

// healthHandler reports process liveness.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
