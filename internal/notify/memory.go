package notify

import (
	"context"
	"sync"

	"github.com/pkordes/caravan-share/internal/domain"
)

// MemoryQueue is an in-process Queue. Used when no Redis is configured.
type MemoryQueue struct {
	mu     sync.Mutex
	byUser map[int64][]domain.Message
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{byUser: make(map[int64][]domain.Message)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg domain.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.byUser[msg.UserID] = append(q.byUser[msg.UserID], msg)
	return nil
}

func (q *MemoryQueue) Drain(_ context.Context, userID int64) ([]domain.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.byUser[userID]
	delete(q.byUser, userID)
	return msgs, nil
}

// Pending returns how many messages are queued for userID.
func (q *MemoryQueue) Pending(userID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byUser[userID])
}
