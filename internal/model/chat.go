package model

import (
	"strings"
	"time"
)

const (
	// DefaultChatTitle is the title of a chat with no user messages.
	DefaultChatTitle = "New Chat"

	// MaxTitleLength is the truncation point for derived titles.
	MaxTitleLength = 40
)

// Chat represents a conversation session. Messages are ordered
// oldest-first and append-only from the caller's perspective.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateChatTitle derives a chat title from its message list. The
// title is the first user message's trimmed content, truncated to
// MaxTitleLength with an ellipsis suffix; DefaultChatTitle when no
// user message exists.
func GenerateChatTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		title := strings.TrimSpace(m.Content)
		// Truncate by characters, not bytes, so multibyte content is
		// never split mid-rune.
		if r := []rune(title); len(r) > MaxTitleLength {
			return string(r[:MaxTitleLength]) + "..."
		}
		return title
	}
	return DefaultChatTitle
}

// ListChatsResponse is the response for listing recent chats.
type ListChatsResponse struct {
	Chats         []Chat `json:"chats"`
	CurrentChatID string `json:"current_chat_id,omitempty"`
}

// CreateChatResponse is the response after creating a chat.
type CreateChatResponse struct {
	Chat *Chat `json:"chat"`
}

// SetCurrentChatRequest is the request to move the session pointer.
type SetCurrentChatRequest struct {
	ChatID string `json:"chat_id"`
}
