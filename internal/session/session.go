package session

import (
	"sync"

	"github.com/accountgate/accountgate/internal/models"
)

// State is the gateway's in-memory belief about the current authenticated
// user. It is an explicit store object injected into the route guards, with
// Hydrate/Patch/Reset as the only mutation entry points.
//
// Invariant: authenticated implies a non-empty profile was hydrated since
// the last Reset; Hydrate sets both together.
type State struct {
	mu            sync.RWMutex
	user          models.UserProfile
	authenticated bool
}

func NewState() *State { return &State{} }

// Hydrate replaces the stored profile after a successful profile fetch and
// marks the session authenticated.
func (s *State) Hydrate(u models.UserProfile) {
	s.mu.Lock()
	s.user = u
	s.authenticated = true
	s.mu.Unlock()
}

// Patch merges a partial profile into the current one. The authenticated
// flag is untouched; fields absent from p keep their value.
func (s *State) Patch(p models.UserProfile) {
	s.mu.Lock()
	s.user = s.user.Merge(p)
	s.mu.Unlock()
}

// Reset clears both the profile and the authenticated flag.
func (s *State) Reset() {
	s.mu.Lock()
	s.user = models.UserProfile{}
	s.authenticated = false
	s.mu.Unlock()
}

// User returns the stored profile and whether the session is authenticated.
func (s *State) User() (models.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.authenticated
}

// Role returns the current user's role tag, empty when no session exists.
func (s *State) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated {
		return ""
	}
	return s.user.Roles
}
