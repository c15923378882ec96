package telegram

import (
	"sync"
	"time"
)

// Limiter implements per-chat token bucket rate limiting for
// interactive actions. The rate is fixed at construction; a rate of 0
// disables limiting entirely.
type Limiter struct {
	perMinute int

	mu      sync.Mutex
	buckets map[int64]*tokenBucket
}

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewLimiter creates a limiter allowing perMinute actions per chat.
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		buckets:   make(map[int64]*tokenBucket),
	}
}

// Allow checks whether an action from the given chat should proceed,
// consuming a token when it does.
func (l *Limiter) Allow(chatID int64) bool {
	if l.perMinute == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[chatID]
	if !ok {
		bucket = &tokenBucket{
			tokens:     float64(l.perMinute),
			maxTokens:  float64(l.perMinute),
			refillRate: float64(l.perMinute) / 60.0,
			lastRefill: time.Now(),
		}
		l.buckets[chatID] = bucket
	}

	now := time.Now()
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens += elapsed * bucket.refillRate
	if bucket.tokens > bucket.maxTokens {
		bucket.tokens = bucket.maxTokens
	}
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false
	}

	bucket.tokens--
	return true
}

// RetryAfter returns the number of seconds until the chat's next token
// is available.
func (l *Limiter) RetryAfter(chatID int64) int {
	if l.perMinute == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[chatID]
	if !ok || bucket.tokens >= 1 {
		return 0
	}

	needed := 1.0 - bucket.tokens
	seconds := needed / bucket.refillRate
	return int(seconds) + 1
}

// Cleanup removes buckets for chats that have been idle longer than
// maxAge, keeping the map from growing with every drive-by visitor.
func (l *Limiter) Cleanup(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for chatID, bucket := range l.buckets {
		if bucket.lastRefill.Before(cutoff) {
			delete(l.buckets, chatID)
		}
	}
}
