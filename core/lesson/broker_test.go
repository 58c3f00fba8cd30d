package lesson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChangeBroker(t *testing.T) {
	broker := NewChangeBroker()

	changes, release := broker.Subscribe()
	defer release()

	broker.LessonChanged(Change{Op: OpCreated, ID: "lp-1", OwnerID: "usr-1"})

	select {
	case chg := <-changes:
		assert.Equal(t, OpCreated, chg.Op)
		assert.Equal(t, "lp-1", chg.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a change")
	}

	// publishing with a full buffer must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			broker.LessonChanged(Change{Op: OpUpdated, ID: "lp-1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("LessonChanged blocked on a slow subscriber")
	}

	// release closes the channel once drained
	release()
	for range changes {
	}
}
