package game

import "sync"

// latest fans a value out to subscribers. Each subscriber channel holds at most
// one pending value; an unread value is replaced by the newer one.
type latest[T any] struct {
	mu   sync.Mutex
	subs []chan T
}

func (l *latest[T]) subscribe(current T) <-chan T {
	ch := make(chan T, 1)
	ch <- current
	l.mu.Lock()
	l.subs = append(l.subs, ch)
	l.mu.Unlock()
	return ch
}

func (l *latest[T]) publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}
