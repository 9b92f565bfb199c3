package auth

import (
	"context"
	"sync"
	"time"
)

// LoginLimiter tracks consecutive failed login attempts per client
// address. Implementations decide where the counters live; call sites
// stay the same whether they are process-local or shared.
type LoginLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

type attemptRecord struct {
	count        int
	blockedUntil time.Time
}

// MemoryLimiter is the process-local limiter. Counters are lost on
// restart and not shared across instances.
type MemoryLimiter struct {
	mu          sync.Mutex
	attempts    map[string]attemptRecord
	maxFailures int
	blockFor    time.Duration
	now         func() time.Time
}

func NewMemoryLimiter(maxFailures int, blockFor time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts:    make(map[string]attemptRecord),
		maxFailures: maxFailures,
		blockFor:    blockFor,
		now:         time.Now,
	}
}

func (l *MemoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[key]
	if !ok {
		return false, nil
	}
	if record.blockedUntil.IsZero() {
		return false, nil
	}
	if !record.blockedUntil.After(l.now()) {
		delete(l.attempts, key)
		return false, nil
	}
	return true, nil
}

func (l *MemoryLimiter) RecordFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := l.attempts[key]
	record.count++
	if record.count >= l.maxFailures {
		record.blockedUntil = l.now().Add(l.blockFor)
	}
	l.attempts[key] = record
	return nil
}

func (l *MemoryLimiter) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, key)
	return nil
}
