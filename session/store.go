package session

import (
	"sync"

	"github.com/justapithecus/flightlog/types"
)

// Store holds every session started by a Scheduler.
// All methods are non-blocking and safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// add registers sess, refusing it when limit running sessions already
// exist. A limit <= 0 disables the check.
func (st *Store) add(sess *session, limit int) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if limit > 0 {
		running := 0
		for _, s := range st.sessions {
			if state, _ := s.snapshot(); state == StateRunning {
				running++
			}
		}
		if running >= limit {
			return ErrSessionLimitReached
		}
	}
	st.sessions[sess.id] = sess
	return nil
}

func (st *Store) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetProgress returns the counters of a session. Unknown ids yield the
// zero Progress, which callers treat as not started.
func (st *Store) GetProgress(id string) types.Progress {
	s, ok := st.get(id)
	if !ok {
		return types.Progress{}
	}
	_, p := s.snapshot()
	return p
}

// GetResult returns a deep copy of the published result.
func (st *Store) GetResult(id string) (types.AnalysisResult, error) {
	s, ok := st.get(id)
	if !ok {
		return types.AnalysisResult{}, ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateCompleted:
		return s.result.Clone(), nil
	case StateCancelled:
		return types.AnalysisResult{}, ErrSessionCancelled
	default:
		return types.AnalysisResult{}, ErrSessionIncomplete
	}
}

// Status returns the state of a session. The boolean is false for unknown
// ids, which separates them from completed empty batches.
func (st *Store) Status(id string) (State, bool) {
	s, ok := st.get(id)
	if !ok {
		return "", false
	}
	state, _ := s.snapshot()
	return state, true
}

// Info returns a description of a session.
func (st *Store) Info(id string) (Info, error) {
	s, ok := st.get(id)
	if !ok {
		return Info{}, ErrSessionNotFound
	}
	return s.info(), nil
}

// Done returns a channel closed when the session leaves the running state.
func (st *Store) Done(id string) (<-chan struct{}, error) {
	s, ok := st.get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.done, nil
}
