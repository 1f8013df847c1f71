// Package session keeps the live wizard controllers of a server process.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studio-wizard-backend/internal/simclock"
	"studio-wizard-backend/internal/wizard"
)

var ErrNotFound = errors.New("session not found")

// Factory builds the controller of a new session.
type Factory func(id uuid.UUID) *wizard.Controller

type entry struct {
	ctrl     *wizard.Controller
	lastSeen time.Time
}

type Registry struct {
	factory Factory
	clock   simclock.Clock
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

func NewRegistry(factory Factory, clock simclock.Clock, logger *zap.Logger) *Registry {
	if clock == nil {
		clock = simclock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		factory:  factory,
		clock:    clock,
		logger:   logger,
		sessions: make(map[uuid.UUID]*entry),
	}
}

func (r *Registry) Create() *wizard.Controller {
	id := uuid.New()
	ctrl := r.factory(id)

	r.mu.Lock()
	r.sessions[ctrl.ID()] = &entry{ctrl: ctrl, lastSeen: r.clock.Now()}
	r.mu.Unlock()

	r.logger.Info("session created", zap.String("session_id", ctrl.ID().String()))
	return ctrl
}

// Get returns the controller and marks the session as active. Closed sessions
// are still returned until the next sweep.
func (r *Registry) Get(id uuid.UUID) (*wizard.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = r.clock.Now()
	return e.ctrl, nil
}

// Remove discards the session, closing it if it is still open.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if !e.ctrl.Closed() {
		_ = e.ctrl.Close()
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops closed sessions and discards the ones idle for longer than
// maxIdle. It returns how many sessions were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.clock.Now()

	r.mu.Lock()
	var expired []*wizard.Controller
	for id, e := range r.sessions {
		if e.ctrl.Closed() || now.Sub(e.lastSeen) > maxIdle {
			expired = append(expired, e.ctrl)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range expired {
		if !ctrl.Closed() {
			_ = ctrl.Close()
			r.logger.Info("idle session discarded", zap.String("session_id", ctrl.ID().String()))
		}
	}
	return len(expired)
}
