package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/storage"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
	"github.com/orbitchat-ai/demo-platform/pkg/metrics"
)

const (
	// MaxRetainedChats caps the collection; inserting beyond the cap
	// evicts the least-recently-updated chat from the tail.
	MaxRetainedChats = 20

	// RecentChatLimit is how many chats RecentChats returns.
	RecentChatLimit = 10
)

// chatDocument is the persisted shape of the chat collection.
type chatDocument struct {
	Chats         []model.Chat `json:"chats"`
	CurrentChatID string       `json:"current_chat_id,omitempty"`
}

// Chats owns the recency-ordered chat collection and the current-chat
// pointer. All mutations re-serialize the whole collection to the
// substrate; last writer wins across concurrent processes.
type Chats struct {
	substrate storage.Store
	logger    *logger.Logger
	now       func() time.Time

	mu            sync.RWMutex
	chats         []*model.Chat
	currentChatID string
	hydrated      bool
	lastID        int64
}

// NewChats creates a chat store backed by the given substrate.
func NewChats(substrate storage.Store, log *logger.Logger) *Chats {
	return &Chats{
		substrate: substrate,
		logger:    log,
		now:       time.Now,
	}
}

// Hydrate loads the persisted collection once at startup.
func (s *Chats) Hydrate(ctx context.Context) error {
	raw, ok, err := s.substrate.Get(ctx, ChatStorageKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.hydrated = true
		return err
	}

	if ok {
		var doc chatDocument
		if uerr := json.Unmarshal([]byte(raw), &doc); uerr != nil {
			s.logger.Warn("discarding unreadable chat document", zap.Error(uerr))
		} else {
			s.chats = make([]*model.Chat, 0, len(doc.Chats))
			for i := range doc.Chats {
				c := doc.Chats[i]
				s.chats = append(s.chats, &c)
			}
			s.currentChatID = doc.CurrentChatID
		}
	}

	s.hydrated = true
	return nil
}

// Hydrated reports whether the initial load has completed.
func (s *Chats) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// nextID derives a chat id from the creation timestamp, bumped by one
// millisecond on collision so ids stay monotonic under the lock.
func (s *Chats) nextID() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("chat-%d", ms)
}

// CreateChat constructs an empty chat, prepends it, evicts beyond the
// retention cap, makes it current, persists, and returns it.
func (s *Chats) CreateChat(ctx context.Context) *model.Chat {
	s.mu.Lock()

	now := s.now()
	chat := &model.Chat{
		ID:        s.nextID(),
		Title:     model.DefaultChatTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.chats = append([]*model.Chat{chat}, s.chats...)
	if len(s.chats) > MaxRetainedChats {
		s.chats = s.chats[:MaxRetainedChats]
		metrics.ChatsEvictedTotal.Inc()
	}
	s.currentChatID = chat.ID

	out := copyChat(chat)
	s.mu.Unlock()

	metrics.ChatsCreatedTotal.Inc()
	s.persist(ctx)
	return out
}

// DeleteChat removes the chat with the given id. Absence is a no-op,
// not an error. Deleting the current chat clears the pointer.
func (s *Chats) DeleteChat(ctx context.Context, id string) {
	s.mu.Lock()

	kept := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.chats = kept

	if s.currentChatID == id {
		s.currentChatID = ""
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateChat replaces the chat's message list, recomputes the title,
// bumps UpdatedAt, and moves the chat to the front. Unknown ids are a
// no-op; no entry is created.
func (s *Chats) UpdateChat(ctx context.Context, id string, messages []model.Message) {
	s.mu.Lock()

	idx := -1
	for i, c := range s.chats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	chat := s.chats[idx]
	chat.Messages = append([]model.Message(nil), messages...)
	chat.Title = model.GenerateChatTitle(messages)
	chat.UpdatedAt = s.now()

	// Recency on write: the updated chat moves to the front.
	s.chats = append(s.chats[:idx], s.chats[idx+1:]...)
	s.chats = append([]*model.Chat{chat}, s.chats...)

	s.mu.Unlock()

	s.persist(ctx)
}

// GetChatByID is a pure lookup with no side effects.
func (s *Chats) GetChatByID(id string) (*model.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.chats {
		if c.ID == id {
			return copyChat(c), true
		}
	}
	return nil, false
}

// RecentChats returns up to RecentChatLimit chats from the head of the
// recency-ordered list.
func (s *Chats) RecentChats() []model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.chats)
	if n > RecentChatLimit {
		n = RecentChatLimit
	}

	out := make([]model.Chat, 0, n)
	for _, c := range s.chats[:n] {
		out = append(out, *copyChat(c))
	}
	return out
}

// SetCurrentChat moves the session pointer without validating that the
// target exists; stale pointers fail softly on lookup.
func (s *Chats) SetCurrentChat(ctx context.Context, id string) {
	s.mu.Lock()
	s.currentChatID = id
	s.mu.Unlock()

	s.persist(ctx)
}

// CurrentChatID returns the session pointer, which may reference a
// since-deleted chat.
func (s *Chats) CurrentChatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChatID
}

// Len returns the number of retained chats.
func (s *Chats) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

func (s *Chats) persist(ctx context.Context) {
	s.mu.RLock()
	doc := chatDocument{
		Chats:         make([]model.Chat, 0, len(s.chats)),
		CurrentChatID: s.currentChatID,
	}
	for _, c := range s.chats {
		doc.Chats = append(doc.Chats, *copyChat(c))
	}
	s.mu.RUnlock()

	data, err := json.Marshal(doc)
	if err == nil {
		err = s.substrate.Set(ctx, ChatStorageKey, string(data))
	}
	if err != nil {
		s.logger.Warn("failed to persist chat document", zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues(ChatStorageKey).Inc()
	}
}

func copyChat(c *model.Chat) *model.Chat {
	out := *c
	out.Messages = append([]model.Message(nil), c.Messages...)
	return &out
}
