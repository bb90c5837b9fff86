package app

import (
	"sync"

	"footy-quiz-service/internal/domain"
)

// LeaderboardBroadcaster fans leaderboard snapshots out to stream
// subscribers. Slow subscribers never block a publish: a stale pending
// snapshot is dropped in favor of the newest one.
type LeaderboardBroadcaster struct {
	mu          sync.Mutex
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboardBroadcaster() *LeaderboardBroadcaster {
	return &LeaderboardBroadcaster{
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// Subscribe registers a listener. The caller must invoke the returned cancel
// function to avoid leaks.
func (b *LeaderboardBroadcaster) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 1)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber.
func (b *LeaderboardBroadcaster) Publish(entries []domain.LeaderboardEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- entries:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- entries
		}
	}
}
