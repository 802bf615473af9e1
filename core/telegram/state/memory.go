package state

import "sync"

type memoryManager[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]Session[T]
}

// NewMemoryManager constructs an in-memory Manager implementation. Sessions
// are ephemeral: a process restart drops every in-progress conversation.
func NewMemoryManager[T any]() Manager[T] {
	return &memoryManager[T]{
		sessions: make(map[int64]Session[T]),
	}
}

// Get returns the session for a chat if it exists.
func (m *memoryManager[T]) Get(chatID int64) (Session[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[chatID]
	return s, ok
}

// Set replaces the session for a chat. A second Set for the same chat
// overwrites the previous session entirely (last command wins).
func (m *memoryManager[T]) Set(chatID int64, s Session[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = s
}

// Update applies fn to the chat's session under the lock.
func (m *memoryManager[T]) Update(chatID int64, fn func(*Session[T])) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return false
	}
	fn(&s)
	m.sessions[chatID] = s
	return true
}

// Clear removes the entire session for a chat.
func (m *memoryManager[T]) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

// CurrentStep returns the chat's step, or StepIdle if no session exists.
func (m *memoryManager[T]) CurrentStep(chatID int64) Step {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[chatID]; ok {
		return s.Step
	}
	return StepIdle
}

// InProgress reports whether the chat has an active conversation.
func (m *memoryManager[T]) InProgress(chatID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return ok && s.Step != StepIdle
}
