package services

import (
	"errors"
	"sync"

	"go.uber.org/atomic"

	"sessionstate/internal/savedstate"
)

// ErrNoChange may be returned from an Update callback to leave the state and
// revision untouched.
var ErrNoChange = errors.New("no change")

type SessionServiceInterface interface {
	State() savedstate.SavedState
	Snapshot() (savedstate.SavedState, uint64)
	Load(state savedstate.SavedState)
	Replace(state savedstate.SavedState) uint64
	Update(fn func(state *savedstate.SavedState) error) (uint64, error)
	SignOut() uint64
	Profile(id savedstate.ProfileID) (savedstate.ProfileData, bool)
	ProfileCount() int
	Revision() uint64
	IsDirty() bool
	MarkClean(revision uint64)
}

// SessionService owns the in-memory current state. Every change bumps the
// revision; the state is dirty while the revision is ahead of the last one
// marked clean by the persistence layer.
type SessionService struct {
	mu       sync.RWMutex
	state    savedstate.SavedState
	revision atomic.Uint64
	clean    atomic.Uint64
}

// State returns a deep copy of the current state.
func (ss *SessionService) State() savedstate.SavedState {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.state.Clone()
}

// Snapshot returns a copy of the state together with the revision it
// belongs to.
func (ss *SessionService) Snapshot() (savedstate.SavedState, uint64) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.state.Clone(), ss.revision.Load()
}

// Load installs state read from storage. The result is clean.
func (ss *SessionService) Load(state savedstate.SavedState) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.state = state.Clone()
	ss.clean.Store(ss.revision.Inc())
}

// Replace installs state and marks it dirty.
func (ss *SessionService) Replace(state savedstate.SavedState) uint64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.state = state.Clone()
	return ss.revision.Inc()
}

// Update applies fn to a copy of the state and commits it if fn returns nil.
// ErrNoChange is swallowed.
func (ss *SessionService) Update(fn func(state *savedstate.SavedState) error) (uint64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	next := ss.state.Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return ss.revision.Load(), nil
		}
		return ss.revision.Load(), err
	}
	ss.state = next
	return ss.revision.Inc(), nil
}

// SignOut drops the auth session and keeps profile data.
func (ss *SessionService) SignOut() uint64 {
	rev, _ := ss.Update(func(s *savedstate.SavedState) error {
		if s.Auth == nil {
			return ErrNoChange
		}
		s.Auth = nil
		return nil
	})
	return rev
}

func (ss *SessionService) Profile(id savedstate.ProfileID) (savedstate.ProfileData, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	pd, ok := ss.state.ProfileData[id]
	if !ok {
		return savedstate.ProfileData{}, false
	}
	return pd.Clone(), true
}

func (ss *SessionService) ProfileCount() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.state.ProfileData)
}

func (ss *SessionService) Revision() uint64 {
	return ss.revision.Load()
}

func (ss *SessionService) IsDirty() bool {
	return ss.revision.Load() > ss.clean.Load()
}

// MarkClean records that revision has been persisted. Older revisions are
// ignored, so a slow save never hides a newer change.
func (ss *SessionService) MarkClean(revision uint64) {
	for {
		cur := ss.clean.Load()
		if revision <= cur {
			return
		}
		if ss.clean.CompareAndSwap(cur, revision) {
			return
		}
	}
}

func NewSessionService() SessionServiceInterface {
	return &SessionService{state: savedstate.Default()}
}
