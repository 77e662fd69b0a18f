package push

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	chats []string
}

func (s *fakeSender) Send(_ context.Context, chatID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, chatID)
	s.sent = append(s.sent, text)
	return nil
}

type fakeResolver struct {
	chats map[int64]string
}

func (r *fakeResolver) PushChannelID(_ context.Context, userID int64) (*string, error) {
	chat, ok := r.chats[userID]
	if !ok {
		return nil, nil
	}
	return &chat, nil
}

func TestQueue_DeliversToLinkedUsers(t *testing.T) {
	sender := &fakeSender{}
	resolver := &fakeResolver{chats: map[int64]string{7: "chat-7"}}
	q := NewQueue(sender, resolver, 8, time.Second)

	require.NoError(t, q.Deliver(context.Background(), 7, "task assigned"))
	require.NoError(t, q.Deliver(context.Background(), 8, "task assigned"))
	q.Close()

	require.Equal(t, []string{"chat-7"}, sender.chats, "unlinked user is skipped silently")
	require.Equal(t, []string{"task assigned"}, sender.sent)
}

func TestQueue_DeliverAfterCloseDropsWithoutPanic(t *testing.T) {
	sender := &fakeSender{}
	resolver := &fakeResolver{chats: map[int64]string{7: "chat-7"}}
	q := NewQueue(sender, resolver, 4, time.Second)
	q.Close()

	require.Error(t, q.Deliver(context.Background(), 7, "after shutdown"))
	require.Empty(t, sender.sent)
	q.Close() // second Close is a no-op
}

func TestQueue_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	sender := &fakeSender{}
	resolver := &fakeResolver{chats: map[int64]string{}}

	q := &Queue{
		sender:   sender,
		resolver: resolver,
		timeout:  time.Second,
		jobs:     make(chan job, 1),
	}
	// No worker running: the second enqueue must fail fast.
	require.NoError(t, q.Deliver(context.Background(), 1, "first"))
	require.Error(t, q.Deliver(context.Background(), 1, "second"))
}
