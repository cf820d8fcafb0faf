package service

// Package service contains the orchestration layer between the HTTP surface
// and the adapter ports: session lifecycle, the admin gate, and staff SSO.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
	apperrors "github.com/carhub/carhub-web/internal/errors"
	"github.com/carhub/carhub-web/internal/ports"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Gateway    ports.Gateway
	Sessions   ports.SessionStore
	SessionTTL time.Duration
}

// SessionService owns the per-browser session lifecycle. It is the only
// writer of session records: handlers read the session from the request
// context and delegate every mutation here.
//
// Concurrency rules:
//   - Status checks for the same session are coalesced: concurrent callers
//     share one upstream call and all see its result.
//   - Login, signup and logout reject a second concurrent attempt of the
//     same kind for the same session with a busy error instead of queueing.
type SessionService struct {
	gateway    ports.Gateway
	sessions   ports.SessionStore
	sessionTTL time.Duration

	statusGroup singleflight.Group

	mu       sync.Mutex
	inFlight map[string]struct{}
}

const (
	opLogin  = "login"
	opSignup = "signup"
	opLogout = "logout"
)

// NewSessionService constructs a new SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		gateway:    opts.Gateway,
		sessions:   opts.Sessions,
		sessionTTL: ttl,
		inFlight:   make(map[string]struct{}),
	}
}

// EnsureSession returns the session for the given ID, or a fresh anonymous
// session when the ID is empty or unknown. The fresh session is persisted
// before it is returned so a subsequent request can find it.
func (s *SessionService) EnsureSession(ctx context.Context, sessionID string) (domainauth.Session, error) {
	if sessionID != "" {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ports.ErrSessionNotFound) {
			return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "session store unavailable")
		}
	}

	now := time.Now()
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		Checked:   false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "session store unavailable")
	}
	return sess, nil
}

// CheckStatus resolves the session's authentication state against the
// marketplace API. An already-checked session is returned as-is; otherwise
// one upstream call runs per session, shared by concurrent callers.
//
// A failing upstream check never surfaces as an error: the session is marked
// checked and anonymous, matching the rule that an unreachable identity API
// reads as "not logged in".
func (s *SessionService) CheckStatus(ctx context.Context, sessionID string) (domainauth.Session, error) {
	sess, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, err
	}
	if sess.Checked {
		return sess, nil
	}

	v, err, _ := s.statusGroup.Do(sess.ID, func() (any, error) {
		return s.checkStatusOnce(ctx, sess)
	})
	if err != nil {
		return domainauth.Session{}, err
	}
	return v.(domainauth.Session), nil
}

// checkStatusOnce runs exactly once per coalesced group. It re-reads the
// session so a login that raced ahead of us is not clobbered.
func (s *SessionService) checkStatusOnce(ctx context.Context, sess domainauth.Session) (domainauth.Session, error) {
	current, err := s.sessions.Get(ctx, sess.ID)
	if err == nil && current.Checked {
		return current, nil
	}
	if err == nil {
		sess = current
	}

	status, gwErr := s.gateway.CheckStatus(ctx, sess.Upstream)
	if gwErr != nil {
		sess.Identity = nil
	} else {
		sess.Identity = status.Identity
		if !status.LoggedIn {
			sess.Identity = nil
		}
		if len(status.Upstream) > 0 {
			sess.Upstream = status.Upstream
		}
	}
	sess.Checked = true

	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return domainauth.Session{}, apperrors.Wrap(saveErr, apperrors.ErrCodeUnavailable, "session store unavailable")
	}
	return sess, nil
}

// Login authenticates against the marketplace API and binds the returned
// user record to the session. A second login attempt for the same session
// while one is in flight is rejected with a busy error.
func (s *SessionService) Login(ctx context.Context, sessionID string, creds ports.Credentials) (domainauth.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return domainauth.Session{}, apperrors.Validation("Email and password are required.")
	}

	sess, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, err
	}

	release, err := s.acquire(sess.ID, opLogin)
	if err != nil {
		return domainauth.Session{}, err
	}
	defer release()

	result, err := s.gateway.Login(ctx, creds, sess.Upstream)
	if err != nil {
		return domainauth.Session{}, err
	}

	sess.Identity = &result.Identity
	sess.Checked = true
	if len(result.Upstream) > 0 {
		sess.Upstream = result.Upstream
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return domainauth.Session{}, apperrors.Wrap(saveErr, apperrors.ErrCodeUnavailable, "session store unavailable")
	}
	return sess, nil
}

// Signup registers a new account with the marketplace API. Registration
// never signs the visitor in: the session stays anonymous and the caller is
// expected to send the visitor to the login form with the returned message.
func (s *SessionService) Signup(ctx context.Context, sessionID string, req ports.SignupRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", apperrors.Validation("Email and password are required.")
	}
	if req.Name == "" {
		return "", apperrors.Validation("Name is required.")
	}

	sess, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	release, err := s.acquire(sess.ID, opSignup)
	if err != nil {
		return "", err
	}
	defer release()

	result, err := s.gateway.Signup(ctx, req, sess.Upstream)
	if err != nil {
		return "", err
	}

	// Persist any upstream cookies the API set, but never the identity.
	if len(result.Upstream) > 0 {
		sess.Upstream = result.Upstream
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			return "", apperrors.Wrap(saveErr, apperrors.ErrCodeUnavailable, "session store unavailable")
		}
	}
	return result.Message, nil
}

// Logout ends the session. The local record is deleted no matter what the
// marketplace API says; an upstream failure is reported after the local
// state is already gone, so the visitor is logged out either way.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "session store unavailable")
	}

	release, err := s.acquire(sess.ID, opLogout)
	if err != nil {
		return err
	}
	defer release()

	_, gwErr := s.gateway.Logout(ctx, sess.Upstream)

	if deleteErr := s.sessions.Delete(ctx, sess.ID); deleteErr != nil {
		return errors.Join(gwErr, apperrors.Wrap(deleteErr, apperrors.ErrCodeUnavailable, "session store unavailable"))
	}
	if gwErr != nil {
		return gwErr
	}
	return nil
}

// acquire marks an operation kind as in flight for a session. The returned
// release func must be called when the operation completes.
func (s *SessionService) acquire(sessionID, op string) (func(), error) {
	key := sessionID + ":" + op
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return nil, apperrors.Busy(fmt.Sprintf("A %s request is already in progress.", op))
	}
	s.inFlight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, key)
	}, nil
}
