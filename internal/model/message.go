// Package model defines data structures for the demo chat platform.
package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single turn in a chat. Messages are immutable
// once appended; the timeline only ever grows.
type Message struct {
	// ID is derived from the creation timestamp, so it is monotonically
	// increasing under the single-writer lock but not globally unique
	// across processes.
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Image is an optional inline attachment, data-URL encoded.
	// Content may be empty only when Image is set.
	Image string `json:"image,omitempty"`
}

// SendMessageRequest is the request to send a new message into the
// active session.
type SendMessageRequest struct {
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// SendMessageResponse is the response after sending a message. The
// assistant reply arrives asynchronously; callers poll the session.
type SendMessageResponse struct {
	ChatID       string   `json:"chat_id"`
	Message      *Message `json:"message"`
	ReplyPending bool     `json:"reply_pending"`
}

// SessionResponse is the snapshot of the active session timeline.
type SessionResponse struct {
	ChatID       string    `json:"chat_id,omitempty"`
	Messages     []Message `json:"messages"`
	ReplyPending bool      `json:"reply_pending"`
	HasMore      bool      `json:"has_more"`
	Page         int       `json:"page"`
}
