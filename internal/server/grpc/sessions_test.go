package grpc

import (
	"testing"

	"github.com/dmitrijs2005/fieldlog/internal/discovery"
	"github.com/dmitrijs2005/fieldlog/internal/logging"
	"github.com/dmitrijs2005/fieldlog/internal/models"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/repomanager"
	"github.com/dmitrijs2005/fieldlog/internal/session"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestSessions_OpenReusesMatchingScope(t *testing.T) {
	repos := repomanager.Bind(store.NewMemoryGateway())
	built := 0
	m := NewSessions(func(operatorID string, start session.Context) *session.Session {
		built++
		return session.New(repos, start, logging.Nop())
	}, models.ModeROV)

	a := m.Get("op")
	assert.Equal(t, models.ModeROV, a.Context().Scope.Mode)

	b := m.Open("op", session.Context{})
	assert.Same(t, a, b, "empty scope matches the default session")

	c := m.Open("op", session.Context{Scope: discovery.Scope{JobPackID: "jp2"}})
	assert.NotSame(t, a, c)
	assert.Equal(t, models.ModeROV, c.Context().Scope.Mode)
	assert.Same(t, c, m.Get("op"))
	assert.Equal(t, 2, built)

	m.Close("op")
	assert.Equal(t, 0, m.Len())
}
