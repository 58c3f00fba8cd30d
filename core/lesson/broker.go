package lesson

import "sync"

const subscriberBuffer = 8

// ChangeBroker fans committed lesson plan changes out to subscribers, for
// live listing refreshes. Publishing never blocks; a subscriber that cannot
// keep up misses changes rather than stalling a mutation.
type ChangeBroker struct {
	mut  sync.Mutex
	subs map[chan Change]struct{}
}

var _ Notifier = (*ChangeBroker)(nil)

func NewChangeBroker() *ChangeBroker {
	return &ChangeBroker{subs: make(map[chan Change]struct{})}
}

// Subscribe registers a new listener. The returned release func must be
// called when done; it is safe to call more than once.
func (b *ChangeBroker) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)
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

func (b *ChangeBroker) LessonChanged(chg Change) {
	b.mut.Lock()
	defer b.mut.Unlock()
	for ch := range b.subs {
		select {
		case ch <- chg:
		default: // slow subscriber, drop
		}
	}
}
