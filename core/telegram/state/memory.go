package state

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/m3rciful/sitebot/core/logger"
	tghelpers "github.com/m3rciful/sitebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// session returns the live session for userID, creating it when missing.
// Callers must hold m.mu for writing.
func (m *memoryManager) session(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle, TempData: make(map[string]any)}
		m.sessions[userID] = s
	}
	return s
}

func (m *memoryManager) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, TempData: map[string]any{}}
	}
	return Session{State: s.State, TempData: maps.Clone(s.TempData)}
}

func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryManager) SetTemp(userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).TempData[key] = value
}

func (m *memoryManager) GetTemp(userID int64, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	v, ok := s.TempData[key]
	return v, ok
}

func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		delete(s.TempData, key)
	}
}

func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

func (m *memoryManager) Transition(userID int64, to State, from ...State) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := StateIdle
	if s, ok := m.sessions[userID]; ok {
		current = s.State
	}
	if len(from) > 0 && !slices.Contains(from, current) {
		return current, false
	}
	m.session(userID).State = to
	return current, true
}

func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[st] = h
}

// ManagerHandler executes the handler registered for the user's current
// state. Updates arriving in a state without a handler are dropped.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	current := m.GetState(sender.ID)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()

	ctx := tghelpers.BuildContext(c)
	status := "ok"
	if !ok {
		status = "skip"
	}
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", status),
		slog.String("stage", string(current)),
	)
	if !ok {
		return nil
	}
	return handler(c)
}
