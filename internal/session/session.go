// Package session bridges the external auth service's identity stream into
// application session state: profile mirroring, idle-timeout enforcement,
// and token refresh.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/models"
)

// DefaultTimeout is the idle duration after which a session is forcibly
// expired.
const DefaultTimeout = time.Hour

// State is the session lifecycle state.
type State string

const (
	StateLoading       State = "loading"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateExpired       State = "expired"
)

// ErrNoIdentity is returned by RefreshSession when no identity is attached.
var ErrNoIdentity = errors.New("no authenticated identity")

// ProfileLoader fetches the user profile for an identity id.
type ProfileLoader func(ctx context.Context, uid string) (*models.User, error)

// SignOutFunc forces the identity out of the session, e.g. on idle expiry or
// a failed profile load.
type SignOutFunc func(ctx context.Context, uid string)

// Session tracks one authenticated identity. The idle timer is a
// cooperative timer re-armed on each tracked activity, so expiry fires at
// most once near the deadline rather than on a fixed polling interval;
// expiry is still detected within one re-arm of the deadline.
type Session struct {
	timeout     time.Duration
	loadProfile ProfileLoader
	signOut     SignOutFunc
	logger      *zap.Logger
	now         func() time.Time

	mu           sync.Mutex
	state        State
	identity     auth.Identity
	profile      *models.User
	lastActivity time.Time
	timer        *time.Timer
}

// NewSession creates a session in the Loading state.
func NewSession(timeout time.Duration, loadProfile ProfileLoader, signOut SignOutFunc, logger *zap.Logger) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		timeout:     timeout,
		loadProfile: loadProfile,
		signOut:     signOut,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source. For tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// HandleAuthState consumes one event from the identity stream. A nil
// identity moves the session to Anonymous. A non-nil identity fetches the
// user profile; a failed fetch is treated as equivalent to sign-out, since a
// profile must exist for a valid session.
func (s *Session) HandleAuthState(ctx context.Context, ident auth.Identity) error {
	if ident == nil {
		s.mu.Lock()
		s.state = StateAnonymous
		s.identity = nil
		s.profile = nil
		s.stopTimerLocked()
		s.mu.Unlock()
		return nil
	}

	profile, err := s.loadProfile(ctx, ident.UID())
	if err != nil || profile == nil {
		s.logger.Error("failed to load user profile, forcing sign-out",
			zap.String("uid", ident.UID()), zap.Error(err))
		s.mu.Lock()
		s.state = StateAnonymous
		s.identity = nil
		s.profile = nil
		s.stopTimerLocked()
		s.mu.Unlock()
		if s.signOut != nil {
			s.signOut(ctx, ident.UID())
		}
		if err == nil {
			err = errors.New("user profile not found")
		}
		return err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = ident
	s.profile = profile
	s.lastActivity = s.now()
	s.armTimerLocked()
	s.mu.Unlock()
	return nil
}

// Touch records tracked activity, resetting the idle clock.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return
	}
	s.lastActivity = s.now()
	s.armTimerLocked()
}

// RefreshSession requests a forced token refresh from the identity. Success
// clears expiry and resets the activity clock; failure forces sign-out and
// leaves the session expired.
func (s *Session) RefreshSession(ctx context.Context) error {
	s.mu.Lock()
	ident := s.identity
	s.mu.Unlock()
	if ident == nil {
		return ErrNoIdentity
	}

	if _, err := ident.Token(ctx, true); err != nil {
		s.logger.Error("session refresh failed, forcing sign-out",
			zap.String("uid", ident.UID()), zap.Error(err))
		s.mu.Lock()
		s.state = StateExpired
		s.stopTimerLocked()
		s.mu.Unlock()
		if s.signOut != nil {
			s.signOut(ctx, ident.UID())
		}
		return err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.lastActivity = s.now()
	s.armTimerLocked()
	s.mu.Unlock()
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the attached identity, or nil.
func (s *Session) Identity() auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Profile returns the mirrored user profile, or nil.
func (s *Session) Profile() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile replaces the mirrored profile after a profile edit.
func (s *Session) SetProfile(profile *models.User) {
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
}

// Close releases the idle timer.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
}

// armTimerLocked (re)arms the idle timer for the current deadline. Callers
// hold s.mu.
func (s *Session) armTimerLocked() {
	s.stopTimerLocked()
	deadline := s.lastActivity.Add(s.timeout)
	delay := deadline.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timer = time.AfterFunc(delay, s.checkExpiry)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// checkExpiry fires near the idle deadline. If activity arrived since the
// timer was armed the timer is re-armed for the remaining idle budget;
// otherwise the session expires and the identity is signed out.
func (s *Session) checkExpiry() {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return
	}
	deadline := s.lastActivity.Add(s.timeout)
	now := s.now()
	if now.Before(deadline) {
		delay := deadline.Sub(now)
		s.timer = time.AfterFunc(delay, s.checkExpiry)
		s.mu.Unlock()
		return
	}

	s.state = StateExpired
	ident := s.identity
	s.stopTimerLocked()
	s.mu.Unlock()

	if ident != nil {
		s.logger.Info("session expired after idle timeout", zap.String("uid", ident.UID()))
		if s.signOut != nil {
			s.signOut(context.Background(), ident.UID())
		}
	}
}
