package grpc

import (
	"sync"

	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/session"
)

// SessionFactory builds the session of one operator.
type SessionFactory func(operatorID string, start session.Context) *session.Session

// Sessions keeps one session per operator. A session is replaced when the
// operator syncs with a different job pack or structure.
type Sessions struct {
	mu          sync.Mutex
	factory     SessionFactory
	defaultMode models.Mode
	byOperator  map[string]*session.Session
}

func NewSessions(factory SessionFactory, defaultMode models.Mode) *Sessions {
	if defaultMode == "" {
		defaultMode = models.ModeDiving
	}
	return &Sessions{
		factory:     factory,
		defaultMode: defaultMode,
		byOperator:  make(map[string]*session.Session),
	}
}

// Get returns the operator's session, opening one with an empty scope in
// the default mode when none exists.
func (m *Sessions) Get(operatorID string) *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byOperator[operatorID]; ok {
		return s
	}
	s := m.factory(operatorID, session.Context{Scope: discovery.Scope{Mode: m.defaultMode}})
	m.byOperator[operatorID] = s
	return s
}

// Open returns the operator's session for scope. An existing session is
// kept when its job pack and structure match; the mode of an existing
// session is switched by the caller.
func (m *Sessions) Open(operatorID string, start session.Context) *session.Session {
	if start.Scope.Mode == "" {
		start.Scope.Mode = m.defaultMode
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byOperator[operatorID]; ok {
		cur := s.Context().Scope
		if cur.JobPackID == start.Scope.JobPackID && cur.StructureID == start.Scope.StructureID {
			return s
		}
	}
	s := m.factory(operatorID, start)
	m.byOperator[operatorID] = s
	return s
}

// Close drops the operator's session.
func (m *Sessions) Close(operatorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byOperator, operatorID)
}

// Len reports the number of open sessions.
func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byOperator)
}
