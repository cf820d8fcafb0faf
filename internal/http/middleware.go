package httpx

// Package httpx is the HTTP surface of the web client: middleware, route
// guards, handlers, and the template renderer.

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

// SessionResolver is the slice of the session service the middleware needs.
type SessionResolver interface {
	CheckStatus(ctx context.Context, sessionID string) (domainauth.Session, error)
}

// GateVerifier is the slice of the admin gate service the middleware needs.
type GateVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionMiddlewareOptions groups dependencies for the session middleware.
type SessionMiddlewareOptions struct {
	Sessions     SessionResolver
	CookieDomain string
	Logger       *slog.Logger
}

// WithSession resolves the session for every request and attaches it to the
// context. The session is created on first contact, its status check runs
// lazily (coalesced in the service), and the cookie is refreshed when the
// session ID changed. It never blocks a request: resolution failures leave
// the request anonymous.
func WithSession(opts SessionMiddlewareOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookies := cookieWriter{Domain: opts.CookieDomain}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookieID := sessionIDFromRequest(r)
			sess, err := opts.Sessions.CheckStatus(r.Context(), cookieID)
			if err != nil {
				logger.ErrorContext(r.Context(), "session resolution failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if sess.ID != cookieID {
				cookies.SetSessionCookie(w, r, sess)
			}
			ctx := SetSessionInContext(r.Context(), &sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession guards routes that need an authenticated visitor. Browser
// requests are sent to the login form with the original path as redirect_uri;
// API requests get a 401 JSON body.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok || !session.IsAuthenticated() {
				if isBrowserRequest(r) {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminGate guards the admin area. It checks the gate cookie against
// the persisted grants and is entirely independent of the visitor session:
// an anonymous visitor with a valid grant passes, an authenticated admin
// without one does not.
func RequireAdminGate(gate GateVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := adminGateTokenFromRequest(r)
			unlocked, err := gate.Verify(r.Context(), token)
			if err != nil || !unlocked {
				if isBrowserRequest(r) {
					http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "admin_gate_locked",
					Err:     errors.New("admin gate credentials required"),
				})
				return
			}
			ctx := SetAdminGateInContext(r.Context(), true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AnnotateAdminGate attaches the gate state to the context without blocking,
// so public pages can show the admin entry in the navigation.
func AnnotateAdminGate(gate GateVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := adminGateTokenFromRequest(r)
			if token != "" {
				if unlocked, err := gate.Verify(r.Context(), token); err == nil && unlocked {
					r = r.WithContext(SetAdminGateInContext(r.Context(), true))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirectToLogin redirects browser requests to the login form with the
// current URL as redirect_uri so login can return the visitor here.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := "/login?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// isBrowserRequest reports whether the request expects an HTML response.
// JSON-only routes and clients that do not accept text/html get JSON errors.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/auth/status") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level         int // Compression level (1-9)
	writerPool    *gzipWriterPool
	compressTypes map[string]bool
	Logger        *slog.Logger
}

// Compression returns a middleware that gzips responses when the client
// accepts gzip, the content type is compressible, and the status can carry a
// body. HEAD requests and already-encoded responses pass through untouched.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.writerPool == nil {
		cfg.writerPool = newGzipWriterPool()
	}
	if cfg.compressTypes == nil {
		cfg.compressTypes = defaultCompressibleTypes()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r.Header.Get("Accept-Encoding")) || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{
				ResponseWriter: w,
				request:        r,
				config:         &cfg,
			}
			w.Header().Add("Vary", "Accept-Encoding")

			next.ServeHTTP(gzw, r)

			if gzw.gzipWriter != nil {
				if err := gzw.gzipWriter.Close(); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
				}
				cfg.writerPool.put(gzw.gzipWriter, cfg.Level)
			}
		})
	}
}

func defaultCompressibleTypes() map[string]bool {
	return map[string]bool{
		"text/html":              true,
		"text/css":               true,
		"text/plain":             true,
		"text/javascript":        true,
		"application/javascript": true,
		"application/json":       true,
		"image/svg+xml":          true,
	}
}

// acceptsGzip checks if the client accepts gzip encoding, respecting q=0.
func acceptsGzip(acceptEncoding string) bool {
	if acceptEncoding == "" {
		return false
	}
	for _, part := range strings.Split(acceptEncoding, ",") {
		part = strings.TrimSpace(part)
		encoding := part
		if idx := strings.Index(part, ";"); idx != -1 {
			encoding = strings.TrimSpace(part[:idx])
		}
		if !strings.EqualFold(encoding, "gzip") {
			continue
		}
		if strings.Contains(part, "q=0.0") || strings.HasSuffix(part, "q=0") {
			return false
		}
		return true
	}
	return false
}

func isCompressibleContentType(contentType string, compressTypes map[string]bool) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return compressTypes[strings.TrimSpace(strings.ToLower(contentType))]
}

// gzipWriterPool manages per-level pools of gzip writers for reuse.
type gzipWriterPool struct {
	pools map[int]*sync.Pool
}

func newGzipWriterPool() *gzipWriterPool {
	return &gzipWriterPool{pools: make(map[int]*sync.Pool)}
}

func (p *gzipWriterPool) get(level int) *gzip.Writer {
	pool, ok := p.pools[level]
	if !ok {
		pool = &sync.Pool{New: func() any { return newGzipWriter(level) }}
		p.pools[level] = pool
	}
	if w, ok := pool.Get().(*gzip.Writer); ok {
		return w
	}
	return newGzipWriter(level)
}

func (p *gzipWriterPool) put(w *gzip.Writer, level int) {
	if pool, ok := p.pools[level]; ok {
		w.Reset(io.Discard)
		pool.Put(w)
	}
}

func newGzipWriter(level int) *gzip.Writer {
	w, err := gzip.NewWriterLevel(io.Discard, level)
	if err != nil {
		return gzip.NewWriter(io.Discard)
	}
	return w
}

// gzipResponseWriter wraps http.ResponseWriter to compress the response body.
// The compress-or-not decision happens at WriteHeader time once the status
// and content type are known.
type gzipResponseWriter struct {
	http.ResponseWriter
	request       *http.Request
	config        *CompressionConfig
	gzipWriter    *gzip.Writer
	headerWritten bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.headerWritten = true

	if statusCode < 200 || statusCode == http.StatusNoContent || statusCode == http.StatusNotModified {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	if w.Header().Get("Content-Encoding") != "" {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}
	if !isCompressibleContentType(w.Header().Get("Content-Type"), w.config.compressTypes) {
		w.ResponseWriter.WriteHeader(statusCode)
		return
	}

	w.gzipWriter = w.config.writerPool.get(w.config.Level)
	w.gzipWriter.Reset(w.ResponseWriter)
	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gzipWriter != nil {
		return w.gzipWriter.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming support.
func (w *gzipResponseWriter) Flush() {
	if w.gzipWriter != nil {
		if err := w.gzipWriter.Flush(); err != nil {
			w.config.Logger.ErrorContext(w.request.Context(), "flushing gzip writer failed", "error", err)
		}
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker.
func (w *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("http.Hijacker not supported")
}
