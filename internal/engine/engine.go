// Package engine drives the live message timeline for the currently
// open chat and simulates the asynchronous behavior a real backend
// would provide: delayed assistant replies and paged history loads.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
	"github.com/orbitchat-ai/demo-platform/pkg/metrics"
)

var (
	// ErrReplyPending is returned when a send arrives while an
	// assistant reply is still outstanding. Only one reply may be
	// pending at a time.
	ErrReplyPending = errors.New("assistant reply already pending")

	// ErrEmptyMessage is returned when a send carries neither content
	// nor an image.
	ErrEmptyMessage = errors.New("message requires content or an image")
)

// Config tunes the simulated delays and pagination.
type Config struct {
	ReplyDelayMin   time.Duration
	ReplyDelayMax   time.Duration
	HistoryDelay    time.Duration
	HistoryPageSize int
	HistoryMaxPages int
}

// DefaultConfig mirrors the demo's original timings: replies land
// after a uniform [2s, 4s) delay, history pages after 1s, 20 messages
// per page, 3 pages total.
func DefaultConfig() Config {
	return Config{
		ReplyDelayMin:   2 * time.Second,
		ReplyDelayMax:   4 * time.Second,
		HistoryDelay:    time.Second,
		HistoryPageSize: 20,
		HistoryMaxPages: 3,
	}
}

// Engine owns the working message list for one active session. The
// list is the source of truth while the session is open; every change
// with a bound chat id is pushed whole to the chat store.
//
// A session is either unbound (no chat id) or bound. Binding happens
// on Open with a known id, or lazily on the first send.
type Engine struct {
	chats  *store.Chats
	logger *logger.Logger
	cfg    Config
	now    func() time.Time

	mu           sync.Mutex
	rng          *rand.Rand
	gen          uint64
	cancel       context.CancelFunc
	chatID       string
	messages     []model.Message
	replyPending bool
	page         int
	hasMore      bool
	lastMsgID    int64
}

// New creates an engine bound to the chat store.
func New(chats *store.Chats, cfg Config, log *logger.Logger) *Engine {
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = 20
	}
	if cfg.HistoryMaxPages <= 0 {
		cfg.HistoryMaxPages = 3
	}
	return &Engine{
		chats:   chats,
		logger:  log,
		cfg:     cfg,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		page:    1,
		hasMore: true,
	}
}

// Open binds the session to a chat, loading its persisted messages
// into the working list. An empty or unknown id opens a fresh unbound
// session. Any pending simulated work from a previous session is
// cancelled.
func (e *Engine) Open(ctx context.Context, chatID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()

	if chatID == "" {
		return
	}

	chat, ok := e.chats.GetChatByID(chatID)
	if !ok {
		// Stale pointer; fail softly into the unbound state.
		return
	}

	e.chatID = chat.ID
	e.messages = append([]model.Message(nil), chat.Messages...)
	e.chats.SetCurrentChat(ctx, chat.ID)
}

// Close cancels pending work and returns the session to unbound.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

// resetLocked invalidates outstanding timers and clears session state.
func (e *Engine) resetLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
	e.chatID = ""
	e.messages = nil
	e.replyPending = false
	e.page = 1
	e.hasMore = true
}

// ChatID returns the bound chat id, empty when unbound.
func (e *Engine) ChatID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chatID
}

// Snapshot returns the current timeline and session flags.
func (e *Engine) Snapshot() model.SessionResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	return model.SessionResponse{
		ChatID:       e.chatID,
		Messages:     append([]model.Message(nil), e.messages...),
		ReplyPending: e.replyPending,
		HasMore:      e.hasMore,
		Page:         e.page,
	}
}

// Send appends a user message optimistically and schedules the
// simulated assistant reply. When the session is unbound, a chat is
// created first and its id adopted. The returned message is the user
// message; the reply lands asynchronously on the working list.
func (e *Engine) Send(ctx context.Context, content, image string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == "" {
		return nil, ErrEmptyMessage
	}
	if image != "" {
		if err := ValidateImageDataURL(image); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	if e.replyPending {
		e.mu.Unlock()
		return nil, ErrReplyPending
	}

	if e.chatID == "" {
		chat := e.chats.CreateChat(ctx)
		e.chatID = chat.ID
	}

	msg := model.Message{
		ID:        e.nextMessageIDLocked(),
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: e.now(),
		Image:     image,
	}
	e.messages = append(e.messages, msg)
	e.replyPending = true

	delay := e.replyDelayLocked()
	gen := e.gen
	replyCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.persistLocked(ctx)
	e.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()

	go func() {
		defer cancel()
		e.deliverReply(replyCtx, gen, delay)
	}()

	return &msg, nil
}

// deliverReply waits out the simulated latency, then appends the
// canned assistant message unless the session moved on.
func (e *Engine) deliverReply(ctx context.Context, gen uint64, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		e.logger.Debug("pending reply cancelled")
		return
	case <-timer.C:
	}

	e.mu.Lock()
	if e.gen != gen {
		// Session was closed or rebound while the timer ran.
		e.mu.Unlock()
		return
	}

	msg := model.Message{
		ID:        e.nextMessageIDLocked(),
		Role:      model.RoleAssistant,
		Content:   cannedReplies[e.rng.Intn(len(cannedReplies))],
		Timestamp: e.now(),
	}
	e.messages = append(e.messages, msg)
	e.replyPending = false
	e.cancel = nil

	e.persistLocked(context.Background())
	e.mu.Unlock()

	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
	metrics.ReplyDelay.Observe(delay.Seconds())
}

// LoadOlder synthesizes a page of placeholder history after the fixed
// delay and prepends it. Pages stop being available after the
// configured maximum; further calls return the unchanged timeline.
func (e *Engine) LoadOlder(ctx context.Context) (model.SessionResponse, error) {
	e.mu.Lock()
	if !e.hasMore || len(e.messages) == 0 {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}
	oldest := e.messages[0].ID
	delay := e.cfg.HistoryDelay
	gen := e.gen
	e.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.SessionResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	batch := e.synthesizeHistory(oldest)

	e.mu.Lock()
	if e.gen != gen {
		// Session was closed or rebound during the simulated fetch.
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}
	e.messages = append(batch, e.messages...)
	if e.page >= e.cfg.HistoryMaxPages {
		e.hasMore = false
	}
	e.page++
	e.persistLocked(ctx)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	metrics.HistoryPagesTotal.Inc()
	return snap, nil
}

// synthesizeHistory builds placeholder messages with ids decrementing
// from the oldest known id, alternating user and assistant turns.
func (e *Engine) synthesizeHistory(oldestID string) []model.Message {
	base, err := strconv.ParseInt(oldestID, 10, 64)
	if err != nil {
		base = 1000
	}

	count := e.cfg.HistoryPageSize
	start := base - int64(count)
	now := e.now()

	batch := make([]model.Message, 0, count)
	for i := 0; i < count; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		batch = append(batch, model.Message{
			ID:        strconv.FormatInt(start+int64(i), 10),
			Role:      role,
			Content:   sampleHistory[i%len(sampleHistory)],
			Timestamp: now.Add(-time.Duration(count-i) * time.Hour),
		})
	}
	return batch
}

func (e *Engine) snapshotLocked() model.SessionResponse {
	return model.SessionResponse{
		ChatID:       e.chatID,
		Messages:     append([]model.Message(nil), e.messages...),
		ReplyPending: e.replyPending,
		HasMore:      e.hasMore,
		Page:         e.page,
	}
}

// persistLocked pushes the full working list to the chat store when a
// chat id is bound. Unknown ids fall through as store-level no-ops.
func (e *Engine) persistLocked(ctx context.Context) {
	if e.chatID == "" {
		return
	}
	e.chats.UpdateChat(ctx, e.chatID, e.messages)
}

// nextMessageIDLocked derives a message id from the current timestamp,
// bumped on collision so ids stay monotonic within the session.
func (e *Engine) nextMessageIDLocked() string {
	ms := e.now().UnixMilli()
	if ms <= e.lastMsgID {
		ms = e.lastMsgID + 1
	}
	e.lastMsgID = ms
	return strconv.FormatInt(ms, 10)
}

func (e *Engine) replyDelayLocked() time.Duration {
	min, max := e.cfg.ReplyDelayMin, e.cfg.ReplyDelayMax
	if max <= min {
		return min
	}
	return min + time.Duration(e.rng.Int63n(int64(max-min)))
}

