// Package web provides the HTTP server and pages for the album shop
// storefront.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"albumshop/internal/db"
	"albumshop/internal/session"
)

const (
	sessionCookieName = "session_id"
	sessionTTL        = 24 * time.Hour
)

// Session is one browser's logged-in state: the shop credential keyed
// by a random session id kept in a cookie. This is the server-side
// stand-in for the original client's local storage; two browsers (or
// tabs with different cookies) can disagree after one logs out, which
// is accepted staleness.
type Session struct {
	ID         string
	Credential session.Credential
	CreatedAt  time.Time
}

// Manager defines the interface for session management.
type Manager interface {
	Create(ctx context.Context, cred session.Credential) (*Session, error)
	Get(ctx context.Context, id string) *Session
	Delete(ctx context.Context, id string)
	GetFromRequest(r *http.Request) *Session
	SetCookie(w http.ResponseWriter, session *Session)
	ClearCookie(w http.ResponseWriter)
}

// ============================================================================
// In-Memory Sessions
// ============================================================================

// MemorySessions manages sessions in memory. Logins do not survive a
// restart; use DBSessions for that.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessions creates an in-memory session manager.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*Session)}
}

// Create stores a new session for the credential.
func (m *MemorySessions) Create(_ context.Context, cred session.Credential) (*Session, error) {
	s := &Session{
		ID:         uuid.NewString(),
		Credential: cred,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get retrieves a session by ID, nil when absent or expired.
func (m *MemorySessions) Get(_ context.Context, id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if time.Since(s.CreatedAt) > sessionTTL {
		return nil
	}
	return s
}

// Delete removes a session by ID.
func (m *MemorySessions) Delete(_ context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// GetFromRequest extracts the session from the request cookie.
func (m *MemorySessions) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return m.Get(r.Context(), cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (m *MemorySessions) SetCookie(w http.ResponseWriter, session *Session) {
	setCookie(w, session)
}

// ClearCookie removes the session cookie from the response.
func (m *MemorySessions) ClearCookie(w http.ResponseWriter) {
	clearCookie(w)
}

// ============================================================================
// Database-Backed Sessions
// ============================================================================

// DBSessions manages sessions in PostgreSQL.
type DBSessions struct {
	database *db.DB
}

// NewDBSessions creates a database-backed session manager.
func NewDBSessions(database *db.DB) *DBSessions {
	return &DBSessions{database: database}
}

// Create stores a new session row for the credential.
func (m *DBSessions) Create(ctx context.Context, cred session.Credential) (*Session, error) {
	now := time.Now()
	dbSession := &db.Session{
		ID:        uuid.NewString(),
		Token:     cred.Token,
		Username:  cred.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	if err := m.database.Sessions().Create(ctx, dbSession); err != nil {
		return nil, err
	}

	return &Session{
		ID:         dbSession.ID,
		Credential: cred,
		CreatedAt:  now,
	}, nil
}

// Get retrieves a session by ID from the database, nil when absent or
// expired.
func (m *DBSessions) Get(ctx context.Context, id string) *Session {
	dbSession, err := m.database.Sessions().Get(ctx, id)
	if err != nil {
		return nil
	}

	return &Session{
		ID: dbSession.ID,
		Credential: session.Credential{
			Token:    dbSession.Token,
			Username: dbSession.Username,
		},
		CreatedAt: dbSession.CreatedAt,
	}
}

// Delete removes a session from the database.
func (m *DBSessions) Delete(ctx context.Context, id string) {
	_ = m.database.Sessions().Delete(ctx, id)
}

// GetFromRequest extracts the session from the request cookie.
func (m *DBSessions) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return m.Get(r.Context(), cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (m *DBSessions) SetCookie(w http.ResponseWriter, session *Session) {
	setCookie(w, session)
}

// ClearCookie removes the session cookie from the response.
func (m *DBSessions) ClearCookie(w http.ResponseWriter) {
	clearCookie(w)
}

// ============================================================================
// Helpers
// ============================================================================

func setCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Ensure both managers implement Manager.
var (
	_ Manager = (*MemorySessions)(nil)
	_ Manager = (*DBSessions)(nil)
)
