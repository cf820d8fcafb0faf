package marketplace

// Package marketplace provides the HTTP boundary adapter to the marketplace
// identity API. It normalizes the four fixed auth endpoints into the
// ports.Gateway contract: a call is successful only when the transport call
// succeeded AND the payload carries the success sentinel; everything else is
// uniformly a failure.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
	"github.com/carhub/carhub-web/internal/ports"
)

// statusSuccess is the payload sentinel the API uses for successful calls.
const statusSuccess = "success"

// Fixed endpoint paths under the configured base URL.
const (
	pathCheckStatus = "/check-session-status"
	pathLogin       = "/login"
	pathSignup      = "/signup"
	pathLogout      = "/logout"
)

// maxResponseBytes caps how much of an upstream response body is read.
const maxResponseBytes = 1 << 20

// Config holds configuration for the marketplace API client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	UserExpr string       // JMESPath expression locating the user record in a payload
	Client   *http.Client // optional; Jar and Timeout are managed per call
}

// Client implements ports.Gateway against the marketplace identity API.
// Upstream cookies are replayed through a per-call cookie jar so the API can
// maintain its server-side session for the browser we act on behalf of.
type Client struct {
	base      *url.URL
	transport http.RoundTripper
	timeout   time.Duration
	userExpr  string
}

var _ ports.Gateway = (*Client)(nil)

// NewClient constructs a marketplace API client from Config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("marketplace: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("marketplace: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("marketplace: base URL %q must be absolute", cfg.BaseURL)
	}

	expr := cfg.UserExpr
	if expr == "" {
		expr = "user"
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("marketplace: compile user expression %q: %w", expr, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Client != nil && cfg.Client.Transport != nil {
		transport = cfg.Client.Transport
	}

	return &Client{
		base:      base,
		transport: transport,
		timeout:   timeout,
		userExpr:  expr,
	}, nil
}

// CheckStatus asks the API whether the replayed cookies belong to an active
// session. A success payload with loggedIn=false is a normal anonymous
// outcome, not an error.
func (c *Client) CheckStatus(
	ctx context.Context,
	upstream []domainauth.UpstreamCookie,
) (ports.StatusResult, error) {
	payload, cookies, err := c.do(ctx, apiCall{method: http.MethodGet, path: pathCheckStatus, upstream: upstream})
	if err != nil {
		return ports.StatusResult{}, err
	}

	if payloadStatus(payload) != statusSuccess {
		return ports.StatusResult{}, failureFromPayload(payload, apperrors.ErrCodeUnauthorized, "session check rejected")
	}

	loggedIn, _ := payload["loggedIn"].(bool)
	if !loggedIn {
		return ports.StatusResult{LoggedIn: false, Upstream: cookies}, nil
	}

	identity, err := c.extractIdentity(payload)
	if err != nil {
		return ports.StatusResult{}, err
	}
	return ports.StatusResult{LoggedIn: true, Identity: identity, Upstream: cookies}, nil
}

// Login exchanges the credential pair for a user record.
func (c *Client) Login(
	ctx context.Context,
	creds ports.Credentials,
	upstream []domainauth.UpstreamCookie,
) (ports.LoginResult, error) {
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	payload, cookies, err := c.do(ctx, apiCall{method: http.MethodPost, path: pathLogin, body: body, upstream: upstream})
	if err != nil {
		return ports.LoginResult{}, err
	}

	if payloadStatus(payload) != statusSuccess {
		return ports.LoginResult{}, failureFromPayload(payload, apperrors.ErrCodeUnauthorized, "Invalid email or password.")
	}

	identity, err := c.extractIdentity(payload)
	if err != nil {
		return ports.LoginResult{}, err
	}
	if identity == nil {
		return ports.LoginResult{}, apperrors.Unavailable("login succeeded but no user record was returned")
	}
	return ports.LoginResult{Identity: *identity, Upstream: cookies}, nil
}

// Signup registers a new account. A successful signup does not authenticate
// the visitor; the API expects a follow-up login.
func (c *Client) Signup(
	ctx context.Context,
	req ports.SignupRequest,
	upstream []domainauth.UpstreamCookie,
) (ports.CallResult, error) {
	body := map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"password": req.Password,
		"phone":    req.Phone,
		"role":     string(req.Role),
	}
	payload, cookies, err := c.do(ctx, apiCall{method: http.MethodPost, path: pathSignup, body: body, upstream: upstream})
	if err != nil {
		return ports.CallResult{}, err
	}

	if payloadStatus(payload) != statusSuccess {
		return ports.CallResult{}, failureFromPayload(payload, apperrors.ErrCodeValidation, "Registration failed.")
	}
	return ports.CallResult{Message: payloadMessage(payload), Upstream: cookies}, nil
}

// Logout invalidates the upstream session. Callers clear local state
// regardless of the outcome; the error is informational.
func (c *Client) Logout(
	ctx context.Context,
	upstream []domainauth.UpstreamCookie,
) (ports.CallResult, error) {
	payload, cookies, err := c.do(ctx, apiCall{method: http.MethodPost, path: pathLogout, upstream: upstream})
	if err != nil {
		return ports.CallResult{}, err
	}

	if payloadStatus(payload) != statusSuccess {
		return ports.CallResult{}, failureFromPayload(payload, apperrors.ErrCodeUnavailable, "logout rejected")
	}
	return ports.CallResult{Message: payloadMessage(payload), Upstream: cookies}, nil
}

// apiCall groups parameters for a single upstream request.
type apiCall struct {
	method   string
	path     string
	body     any
	upstream []domainauth.UpstreamCookie
}

// do issues exactly one HTTP call and decodes the JSON payload. Upstream
// cookies are seeded into a fresh jar and the updated set is returned so the
// caller can persist it with the session.
func (c *Client) do(ctx context.Context, call apiCall) (map[string]any, []domainauth.UpstreamCookie, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create cookie jar")
	}
	jar.SetCookies(c.base, toHTTPCookies(call.upstream))

	var bodyReader io.Reader
	if call.body != nil {
		raw, marshalErr := json.Marshal(call.body)
		if marshalErr != nil {
			return nil, nil, apperrors.Wrap(marshalErr, apperrors.ErrCodeInternal, "encode request body")
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, c.base.String()+call.path, bodyReader)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if call.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Transport: c.transport, Jar: jar, Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "marketplace API unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "read marketplace API response")
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed or non-JSON responses are failures; nothing is parsed partially.
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "malformed marketplace API response")
	}

	updated := fromHTTPCookies(jar.Cookies(c.base))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// A non-OK response never counts as success, even if the body claims
		// the sentinel. The message field stays available for the caller.
		delete(payload, "status")
	}

	return payload, updated, nil
}

// extractIdentity pulls the user record out of a payload using the configured
// JMESPath expression and maps it onto the domain identity.
func (c *Client) extractIdentity(payload map[string]any) (*domainauth.Identity, error) {
	record, err := jmespath.Search(c.userExpr, payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "extract user record")
	}
	if record == nil {
		return nil, nil
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "re-encode user record")
	}
	var identity domainauth.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "decode user record")
	}
	if identity.UserID == "" {
		return nil, apperrors.Unavailable("user record is missing an id")
	}
	return &identity, nil
}

func payloadStatus(payload map[string]any) string {
	s, _ := payload["status"].(string)
	return s
}

func payloadMessage(payload map[string]any) string {
	m, _ := payload["message"].(string)
	return m
}

// failureFromPayload builds the operation failure, preferring the payload's
// message field so forms can surface what the API said.
func failureFromPayload(payload map[string]any, code apperrors.ErrorCode, fallback string) error {
	msg := payloadMessage(payload)
	if msg == "" {
		msg = fallback
	}
	return &apperrors.AppError{Code: code, Message: msg}
}

func toHTTPCookies(upstream []domainauth.UpstreamCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(upstream))
	for _, c := range upstream {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func fromHTTPCookies(cookies []*http.Cookie) []domainauth.UpstreamCookie {
	out := make([]domainauth.UpstreamCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, domainauth.UpstreamCookie{Name: c.Name, Value: c.Value})
	}
	return out
}
