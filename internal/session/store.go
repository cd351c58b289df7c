// Package session owns the credential identifying a logged-in shop
// session: the access token and the username it was issued for. The two
// fields are set and cleared together; a reader never observes one
// without the other.
package session

import "sync"

// Credential is the token+username pair for a logged-in session.
type Credential struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Store is the single mutation surface for the credential. A present
// token does not imply validity; validity requires a round trip (see
// the authz package).
type Store interface {
	// SetCredential stores both fields; subsequent reads see both.
	SetCredential(token, username string) error
	// Credential returns the stored credential, or ok=false when empty.
	Credential() (Credential, bool)
	// Clear removes both fields. Idempotent.
	Clear() error
	// IsPresent reports whether a token is stored.
	IsPresent() bool
}

// MemoryStore keeps the credential in process memory. Used for tests
// and as the per-browser-session store inside the web layer.
type MemoryStore struct {
	mu   sync.RWMutex
	cred Credential
	set  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetCredential stores both fields atomically.
func (s *MemoryStore) SetCredential(token, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{Token: token, Username: username}
	s.set = true
	return nil
}

// Credential returns the stored credential.
func (s *MemoryStore) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Credential{}, false
	}
	return s.cred, true
}

// Clear removes the credential. Safe to call when already empty.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.set = false
	return nil
}

// IsPresent reports whether a token is stored.
func (s *MemoryStore) IsPresent() bool {
	_, ok := s.Credential()
	return ok
}

var _ Store = (*MemoryStore)(nil)
