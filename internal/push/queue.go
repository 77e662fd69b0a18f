package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/regioninvest/portal/internal/domain"
)

// Sender is the outbound channel transport.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// ChannelResolver maps a portal user to their push-channel identifier.
type ChannelResolver interface {
	PushChannelID(ctx context.Context, userID int64) (*string, error)
}

// Queue decouples delivery from the synchronous workflow path: Deliver
// enqueues and returns immediately, a background worker drains the
// queue with a bounded per-send timeout.
type Queue struct {
	sender   Sender
	resolver ChannelResolver
	timeout  time.Duration

	jobs   chan job
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

type job struct {
	userID int64
	text   string
}

// NewQueue creates a delivery queue with the given buffer size and
// starts its worker.
func NewQueue(sender Sender, resolver ChannelResolver, size int, timeout time.Duration) *Queue {
	q := &Queue{
		sender:   sender,
		resolver: resolver,
		timeout:  timeout,
		jobs:     make(chan job, size),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Deliver enqueues one message for the user. A full or closed queue
// drops the message rather than block or panic; the notification row
// remains the durable record either way.
func (q *Queue) Deliver(_ context.Context, userID int64, text string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errors.New("delivery queue closed, message dropped")
	}

	select {
	case q.jobs <- job{userID: userID, text: text}:
		return nil
	default:
		return errors.New("delivery queue full, message dropped")
	}
}

// Close stops accepting messages and waits for the worker to drain the
// queue.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.jobs)
	})
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		if err := q.send(j); err != nil {
			slog.Warn("push send failed", "user_id", j.userID, "error", err)
		}
	}
}

func (q *Queue) send(j job) error {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	chatID, err := q.resolver.PushChannelID(ctx, j.userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolve channel: %w", err)
	}
	if chatID == nil {
		// User never linked the bot; in-app notification only.
		return nil
	}

	return q.sender.Send(ctx, *chatID, j.text)
}
