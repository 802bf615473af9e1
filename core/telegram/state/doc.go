// Package state provides a lightweight typed session manager for Telegram
// bot conversations. It is intentionally transport-free so the conversation
// logic can be tested without a bot instance.
package state
