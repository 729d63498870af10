package app

import (
	"sync"

	"eduplay-service/internal/domain"
)

// Feed fans leaderboard snapshots out to live subscribers. Slow consumers
// never block a publish: a full channel has its stale snapshot dropped and
// replaced with the newest one.
type Feed struct {
	mu          sync.Mutex
	last        domain.LeaderboardSnapshot
	primed      bool
	subscribers map[chan domain.LeaderboardSnapshot]struct{}
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[chan domain.LeaderboardSnapshot]struct{}),
	}
}

// Subscribe returns a channel that receives snapshot updates. The latest
// snapshot, when one exists, is delivered immediately. The caller must
// invoke the returned cancel function to avoid leaks.
func (f *Feed) Subscribe() (<-chan domain.LeaderboardSnapshot, func()) {
	ch := make(chan domain.LeaderboardSnapshot, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	if f.primed {
		ch <- f.last
	}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the snapshot to every subscriber, dropping a stale
// pending snapshot when a subscriber's buffer is full.
func (f *Feed) Publish(snapshot domain.LeaderboardSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.last = snapshot
	f.primed = true
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
