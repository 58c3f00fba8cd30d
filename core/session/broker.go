package session

import "sync"

const subscriberBuffer = 8

// Broker fans auth change events out to subscribers. Publish never blocks;
// a subscriber that cannot keep up misses events rather than stalling the
// auth path.
type Broker struct {
	mut  sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener. The returned release func must be
// called when done; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mut.Lock()
	b.subs[ch] = struct{}{}
	b.mut.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			b.mut.Lock()
			delete(b.subs, ch)
			b.mut.Unlock()
			close(ch)
		})
	}
	return ch, release
}

func (b *Broker) Publish(evt Event) {
	b.mut.Lock()
	defer b.mut.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default: // slow subscriber, drop
		}
	}
}

// Subscribers returns the current listener count.
func (b *Broker) Subscribers() int {
	b.mut.Lock()
	defer b.mut.Unlock()
	return len(b.subs)
}
