package state

// Step identifies a position inside a multi-step conversation.
type Step string

// StepIdle indicates there is no active conversation for the chat.
const StepIdle Step = "idle"

// Session stores the conversation position and a typed draft for one chat.
type Session[T any] struct {
	Step Step
	Data T
}

// Manager owns conversation sessions keyed by chat id. Implementations must
// be safe for concurrent use: the poller may handle updates from unrelated
// chats in parallel.
type Manager[T any] interface {
	// Get returns the session for a chat and whether one exists.
	Get(chatID int64) (Session[T], bool)
	// Set replaces the session for a chat, creating it if necessary.
	Set(chatID int64, s Session[T])
	// Update applies fn to the chat's session under the manager lock.
	// It reports whether a session existed.
	Update(chatID int64, fn func(*Session[T])) bool
	// Clear removes the session for a chat.
	Clear(chatID int64)
	// CurrentStep returns the chat's step, or StepIdle without a session.
	CurrentStep(chatID int64) Step
	// InProgress reports whether the chat has an active conversation.
	InProgress(chatID int64) bool
}
