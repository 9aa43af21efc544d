package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session is a snapshot of a user's conversation state.
type Session struct {
	State    State
	TempData map[string]any
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	// Get returns a copy of the user's session; unknown users are idle.
	Get(userID int64) Session
	Clear(userID int64)

	SetTemp(userID int64, key string, value any)
	GetTemp(userID int64, key string) (any, bool)
	ClearTemp(userID int64, key string)

	SetState(userID int64, st State)
	GetState(userID int64) State
	// Transition moves the user to `to` only when the current state is one of
	// `from`. It returns the state observed before the call and whether the
	// move happened.
	Transition(userID int64, to State, from ...State) (State, bool)

	InProgress(userID int64) bool

	// Handle binds a handler to a state; ManagerHandler dispatches to it.
	Handle(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error
}

// TempAs reads a temporary value and asserts its type.
func TempAs[T any](m Manager, userID int64, key string) (T, bool) {
	var zero T
	raw, ok := m.GetTemp(userID, key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
