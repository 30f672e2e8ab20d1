package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shoply-backend-go/internal/auth"
	"shoply-backend-go/internal/models"
)

// Snapshot is the UI-facing session contract consumed by route guards and
// forms.
type Snapshot struct {
	CurrentIdentity *IdentityInfo `json:"currentIdentity"`
	UserProfile     *models.User  `json:"userProfile"`
	Loading         bool          `json:"loading"`
	SessionExpired  bool          `json:"sessionExpired"`
	IsOnline        bool          `json:"isOnline"`
	ConnectionError string        `json:"connectionError,omitempty"`
}

// IdentityInfo is the externally visible part of an identity.
type IdentityInfo struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Manager owns the per-identity sessions and mirrors connectivity state
// from the connectivity monitor into every snapshot.
type Manager struct {
	timeout     time.Duration
	loadProfile ProfileLoader
	authService auth.Service
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	online   bool
	connErr  string
}

// NewManager creates a session manager. Sessions are created on sign-in and
// removed on explicit sign-out; a forced sign-out (idle expiry, refresh
// failure) keeps the session so the client can still refresh it.
func NewManager(timeout time.Duration, loadProfile ProfileLoader, authService auth.Service, logger *zap.Logger) *Manager {
	return &Manager{
		timeout:     timeout,
		loadProfile: loadProfile,
		authService: authService,
		logger:      logger,
		sessions:    make(map[string]*Session),
		online:      true,
	}
}

// Create builds a session for the identity and runs the first auth-state
// transition. The returned error reflects a failed profile load.
func (m *Manager) Create(ctx context.Context, ident auth.Identity) (*Session, error) {
	s := NewSession(m.timeout, m.loadProfile, m.forceSignOut, m.logger)
	if err := s.HandleAuthState(ctx, ident); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if old, ok := m.sessions[ident.UID()]; ok {
		old.Close()
	}
	m.sessions[ident.UID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session for the uid, if any.
func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	return s, ok
}

// Remove drops the session on explicit sign-out, reporting the null
// identity to it first.
func (m *Manager) Remove(ctx context.Context, uid string) {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()
	if ok {
		s.HandleAuthState(ctx, nil)
		s.Close()
	}
}

// Touch records tracked activity for the uid's session.
func (m *Manager) Touch(uid string) {
	if s, ok := m.Get(uid); ok {
		s.Touch()
	}
}

// SetConnectivity consumes status changes from the connectivity monitor.
func (m *Manager) SetConnectivity(online bool, connectionError string) {
	m.mu.Lock()
	m.online = online
	m.connErr = connectionError
	m.mu.Unlock()
}

// Snapshot assembles the UI-facing view for the uid. An unknown uid yields
// an anonymous snapshot carrying only connectivity state.
func (m *Manager) Snapshot(uid string) Snapshot {
	m.mu.Lock()
	online, connErr := m.online, m.connErr
	s, ok := m.sessions[uid]
	m.mu.Unlock()

	snap := Snapshot{IsOnline: online, ConnectionError: connErr}
	if !ok {
		return snap
	}

	snap.Loading = s.State() == StateLoading
	snap.SessionExpired = s.State() == StateExpired
	snap.UserProfile = s.Profile()
	if ident := s.Identity(); ident != nil {
		snap.CurrentIdentity = &IdentityInfo{UID: ident.UID(), Email: ident.Email()}
	}
	return snap
}

// forceSignOut revokes the identity's tokens without dropping the session,
// so an expired session can still be refreshed by the client.
func (m *Manager) forceSignOut(ctx context.Context, uid string) {
	if err := m.authService.SignOut(ctx, uid); err != nil {
		m.logger.Error("forced sign-out failed", zap.String("uid", uid), zap.Error(err))
	}
}
