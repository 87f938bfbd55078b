package engine

import (
	"context"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/storage"
	"github.com/orbitchat-ai/demo-platform/internal/store"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
)

func fastConfig() Config {
	return Config{
		ReplyDelayMin:   time.Millisecond,
		ReplyDelayMax:   time.Millisecond,
		HistoryDelay:    0,
		HistoryPageSize: 20,
		HistoryMaxPages: 3,
	}
}

func newEngine(t *testing.T) (*Engine, *store.Chats) {
	t.Helper()
	chats := store.NewChats(storage.NewMemory(), logger.NewNop())
	return New(chats, fastConfig(), logger.NewNop()), chats
}

func waitForReply(t *testing.T, e *Engine) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !e.Snapshot().ReplyPending
	}, 2*time.Second, 5*time.Millisecond, "assistant reply never landed")
}

func TestSendUnboundCreatesChat(t *testing.T) {
	ctx := context.Background()
	e, chats := newEngine(t)

	msg, err := e.Send(ctx, "hello there", "")
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, msg.Role)
	require.Equal(t, "hello there", msg.Content)

	chatID := e.ChatID()
	require.NotEmpty(t, chatID)
	require.Equal(t, 1, chats.Len())

	chat, ok := chats.GetChatByID(chatID)
	require.True(t, ok)
	require.Len(t, chat.Messages, 1)
	require.Equal(t, msg.ID, chat.Messages[0].ID)
}

func TestAssistantReplyArrives(t *testing.T) {
	ctx := context.Background()
	e, chats := newEngine(t)

	_, err := e.Send(ctx, "hello", "")
	require.NoError(t, err)
	require.True(t, e.Snapshot().ReplyPending)

	waitForReply(t, e)

	snap := e.Snapshot()
	require.Len(t, snap.Messages, 2)
	require.Equal(t, model.RoleAssistant, snap.Messages[1].Role)
	require.Contains(t, cannedReplies, snap.Messages[1].Content)

	// Reply is persisted back to the store too.
	chat, ok := chats.GetChatByID(e.ChatID())
	require.True(t, ok)
	require.Len(t, chat.Messages, 2)
}

func TestOnlyOneReplyPending(t *testing.T) {
	ctx := context.Background()
	chats := store.NewChats(storage.NewMemory(), logger.NewNop())
	cfg := fastConfig()
	cfg.ReplyDelayMin = time.Minute
	cfg.ReplyDelayMax = time.Minute
	e := New(chats, cfg, logger.NewNop())

	_, err := e.Send(ctx, "first", "")
	require.NoError(t, err)

	_, err = e.Send(ctx, "second", "")
	require.ErrorIs(t, err, ErrReplyPending)

	snap := e.Snapshot()
	require.Len(t, snap.Messages, 1)
}

func TestCloseCancelsPendingReply(t *testing.T) {
	ctx := context.Background()
	chats := store.NewChats(storage.NewMemory(), logger.NewNop())
	cfg := fastConfig()
	cfg.ReplyDelayMin = 20 * time.Millisecond
	cfg.ReplyDelayMax = 20 * time.Millisecond
	e := New(chats, cfg, logger.NewNop())

	_, err := e.Send(ctx, "hello", "")
	require.NoError(t, err)
	chatID := e.ChatID()

	e.Close()
	time.Sleep(60 * time.Millisecond)

	snap := e.Snapshot()
	require.Empty(t, snap.ChatID)
	require.Empty(t, snap.Messages)

	// The cancelled reply never reached the persisted chat either.
	chat, ok := chats.GetChatByID(chatID)
	require.True(t, ok)
	require.Len(t, chat.Messages, 1)
}

func TestSendRequiresContentOrImage(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	_, err := e.Send(ctx, "   ", "")
	require.ErrorIs(t, err, ErrEmptyMessage)

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	msg, err := e.Send(ctx, "", image)
	require.NoError(t, err)
	require.Empty(t, msg.Content)
	require.Equal(t, image, msg.Image)
}

func TestSendRejectsNonImageAttachment(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	_, err := e.Send(ctx, "hi", "data:text/plain;base64,aGVsbG8=")
	require.ErrorIs(t, err, ErrNotAnImage)
}

func TestOpenLoadsPersistedMessages(t *testing.T) {
	ctx := context.Background()
	e, chats := newEngine(t)

	chat := chats.CreateChat(ctx)
	chats.UpdateChat(ctx, chat.ID, []model.Message{
		{ID: "100", Role: model.RoleUser, Content: "stored", Timestamp: time.Now()},
	})

	e.Open(ctx, chat.ID)

	snap := e.Snapshot()
	require.Equal(t, chat.ID, snap.ChatID)
	require.Len(t, snap.Messages, 1)
	require.Equal(t, "stored", snap.Messages[0].Content)
	require.Equal(t, chat.ID, chats.CurrentChatID())
}

func TestOpenUnknownChatStaysUnbound(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	e.Open(ctx, "chat-404")

	snap := e.Snapshot()
	require.Empty(t, snap.ChatID)
	require.Empty(t, snap.Messages)
}

func TestLoadOlderPrependsAndStopsAfterThreePages(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	_, err := e.Send(ctx, "newest", "")
	require.NoError(t, err)
	waitForReply(t, e)

	base := e.Snapshot().Messages[0]
	baseID, err := strconv.ParseInt(base.ID, 10, 64)
	require.NoError(t, err)

	snap, err := e.LoadOlder(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 22)
	require.True(t, snap.HasMore)

	// Synthesized ids decrement from the oldest known id.
	oldest, err := strconv.ParseInt(snap.Messages[0].ID, 10, 64)
	require.NoError(t, err)
	require.Equal(t, baseID-20, oldest)
	require.Equal(t, model.RoleUser, snap.Messages[0].Role)
	require.Equal(t, model.RoleAssistant, snap.Messages[1].Role)

	snap, err = e.LoadOlder(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 42)
	require.True(t, snap.HasMore)

	snap, err = e.LoadOlder(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 62)
	require.False(t, snap.HasMore)

	// Exhausted: no further synthesis.
	snap, err = e.LoadOlder(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Messages, 62)
	require.False(t, snap.HasMore)
}

func TestLoadOlderOnEmptyTimelineIsNoop(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)

	snap, err := e.LoadOlder(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Messages)
	require.True(t, snap.HasMore)
}

func TestValidateImageDataURL(t *testing.T) {
	valid := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8})

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid jpeg", valid, nil},
		{"not a data url", "https://example.com/cat.png", ErrMalformedDataURL},
		{"missing payload", "data:image/png;base64", ErrMalformedDataURL},
		{"wrong media type", "data:application/pdf;base64,aGk=", ErrNotAnImage},
		{"not base64 encoded", "data:image/png;charset=utf-8,hello", ErrMalformedDataURL},
		{"bad payload", "data:image/png;base64,!!!", ErrMalformedDataURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageDataURL(tt.input)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEncodeImageDataURL(t *testing.T) {
	url, err := EncodeImageDataURL("image/png", []byte("body"))
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,Ym9keQ==", url)
	require.NoError(t, ValidateImageDataURL(url))

	_, err = EncodeImageDataURL("text/plain", []byte("body"))
	require.ErrorIs(t, err, ErrNotAnImage)
}
