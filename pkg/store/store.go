// Package store provides in-memory storage for calculator sessions.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lemonberrylabs/calculator/pkg/accumulator"
)

// ErrNotFound is returned when a session name is unknown.
var ErrNotFound = errors.New("not found")

// HistoryEntry is a completed calculation recorded on a session.
type HistoryEntry struct {
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Time       time.Time `json:"time"`
}

// Session is a snapshot of a stored calculator session.
type Session struct {
	Name       string              `json:"name"`
	Display    accumulator.Display `json:"display"`
	CreateTime time.Time           `json:"createTime"`
	UpdateTime time.Time           `json:"updateTime"`
}

type session struct {
	name       string
	acc        *accumulator.Accumulator
	history    []HistoryEntry
	createTime time.Time
	updateTime time.Time
}

func (s *session) snapshot() *Session {
	return &Session{
		Name:       s.name,
		Display:    s.acc.Display(),
		CreateTime: s.createTime,
		UpdateTime: s.updateTime,
	}
}

// Store is a thread-safe in-memory storage for sessions.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*session
	historyLimit int
}

// New creates a new empty store keeping at most historyLimit calculations
// per session.
func New(historyLimit int) *Store {
	return &Store{
		sessions:     make(map[string]*session),
		historyLimit: historyLimit,
	}
}

// CreateSession creates a session with a fresh accumulator.
func (s *Store) CreateSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &session{
		name:       "sessions/" + uuid.NewString(),
		acc:        accumulator.New(),
		createTime: now,
		updateTime: now,
	}
	sess.acc.OnCalculate(func(c accumulator.Calculation) {
		s.record(sess, c)
	})
	s.sessions[sess.name] = sess
	return sess.snapshot()
}

// record appends to the session history; the caller holds s.mu.
func (s *Store) record(sess *session, c accumulator.Calculation) {
	if s.historyLimit == 0 {
		return
	}
	sess.history = append(sess.history, HistoryEntry{
		Expression: c.Expression,
		Result:     c.Result,
		Time:       time.Now(),
	})
	if over := len(sess.history) - s.historyLimit; over > 0 {
		sess.history = append(sess.history[:0:0], sess.history[over:]...)
	}
}

// GetSession retrieves a session by its full name.
func (s *Store) GetSession(name string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' %w", name, ErrNotFound)
	}
	return sess.snapshot(), nil
}

// ListSessions returns all sessions, oldest first.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, sess.snapshot())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreateTime.Equal(result[j].CreateTime) {
			return result[i].Name < result[j].Name
		}
		return result[i].CreateTime.Before(result[j].CreateTime)
	})
	return result
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[name]; !ok {
		return fmt.Errorf("session '%s' %w", name, ErrNotFound)
	}
	delete(s.sessions, name)
	return nil
}

// Press feeds commands to a session's accumulator in order. Commands before
// a failing one stay applied; the returned snapshot reflects them.
func (s *Store) Press(name string, cmds []string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' %w", name, ErrNotFound)
	}
	err := sess.acc.PressAll(cmds)
	sess.updateTime = time.Now()
	return sess.snapshot(), err
}

// History returns a copy of the calculations recorded on a session.
func (s *Store) History(name string) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' %w", name, ErrNotFound)
	}
	return append([]HistoryEntry(nil), sess.history...), nil
}
