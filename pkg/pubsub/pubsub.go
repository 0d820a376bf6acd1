package pubsub

import (
	"sync"
)

// subscriberBuffer absorbs short bursts so the poll loop never blocks on a
// slow consumer; a full channel drops the message instead.
const subscriberBuffer = 8

// PubSub fans typed payloads out to topic subscribers. A new poll cycle
// supersedes the previous one, so dropping on a full subscriber is safe: the
// next publish carries a fresher snapshot anyway.
type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
}

func New[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, subscriberBuffer)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes the channel from the topic and closes it.
func (ps *PubSub[T]) Unsubscribe(topic string, sub <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.subs[topic]
	for i, ch := range subs {
		if ch == sub {
			ps.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		default:
			// subscriber is behind; it will catch up on the next publish
		}
	}
}
