package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a per-client token bucket. Tokens refill continuously at
// refillRate per second up to capacity.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
	lastSeen   time.Time
	now        func() time.Time
}

// NewTokenBucket crea un bucket lleno
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return newTokenBucketWithClock(capacity, refillRate, time.Now)
}

func newTokenBucketWithClock(capacity, refillRate int, now func() time.Time) *TokenBucket {
	t := now()
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: t,
		lastSeen:   t,
		now:        now,
	}
}

// Allow consumes one token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastSeen = tb.now()

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Tokens returns the whole tokens currently available
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}

// must be called with lock held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastSeen.Before(cutoff)
}

// RateLimiterCollection keeps one bucket per client id
type RateLimiterCollection struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate int
	now        func() time.Time

	lastCleanup     time.Time
	cleanupInterval time.Duration
	idleTTL         time.Duration
}

// NewRateLimiterCollection creates a new collection of rate limiters
func NewRateLimiterCollection(capacity, refillRate int) *RateLimiterCollection {
	return newCollectionWithClock(capacity, refillRate, time.Now)
}

func newCollectionWithClock(capacity, refillRate int, now func() time.Time) *RateLimiterCollection {
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		now:             now,
		lastCleanup:     now(),
		cleanupInterval: 10 * time.Minute,
		idleTTL:         30 * time.Minute,
	}
}

// Allow checks if a request from the given client is allowed and returns
// the tokens left afterwards
func (rlc *RateLimiterCollection) Allow(clientID string) (bool, int) {
	bucket := rlc.getBucket(clientID)
	allowed := bucket.Allow()
	return allowed, bucket.Tokens()
}

// Len returns the number of tracked clients
func (rlc *RateLimiterCollection) Len() int {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()
	return len(rlc.buckets)
}

func (rlc *RateLimiterCollection) getBucket(clientID string) *TokenBucket {
	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	rlc.maybeCleanup()

	bucket, ok := rlc.buckets[clientID]
	if !ok {
		bucket = newTokenBucketWithClock(rlc.capacity, rlc.refillRate, rlc.now)
		rlc.buckets[clientID] = bucket
	}
	return bucket
}

// maybeCleanup drops buckets idle for longer than idleTTL. Lock must be held.
func (rlc *RateLimiterCollection) maybeCleanup() {
	now := rlc.now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.idleTTL)
	for clientID, bucket := range rlc.buckets {
		if bucket.idleSince(cutoff) {
			delete(rlc.buckets, clientID)
		}
	}
	rlc.lastCleanup = now
}
