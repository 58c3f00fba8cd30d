package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	broker := NewBroker()

	events, release := broker.Subscribe()
	defer release()
	require.Equal(t, 1, broker.Subscribers())

	sess := Session{TokenID: "tok-1", UserID: "usr-1", Email: "t@test.cd"}
	broker.Publish(Event{Type: EventSignedIn, Session: &sess})

	select {
	case evt := <-events:
		assert.Equal(t, EventSignedIn, evt.Type)
		require.NotNil(t, evt.Session)
		assert.Equal(t, "usr-1", evt.Session.UserID)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}

	release()
	assert.Equal(t, 0, broker.Subscribers())
	release() // idempotent

	// publishing to no subscribers must not block
	broker.Publish(Event{Type: EventSignedOut})
}

func TestBroker_slowSubscriberDropsEvents(t *testing.T) {
	broker := NewBroker()

	_, release := broker.Subscribe()
	defer release()

	// overflow the subscriber buffer; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			broker.Publish(Event{Type: EventTokenRefreshed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestStore_sessionLifecycle(t *testing.T) {
	broker := NewBroker()
	store := NewStore(broker)

	events, release := broker.Subscribe()
	defer release()

	nextEvent := func() Event {
		select {
		case evt := <-events:
			return evt
		case <-time.After(time.Second):
			t.Fatal("expected an event")
			return Event{}
		}
	}

	future := time.Now().Add(time.Hour)
	sess := Session{TokenID: "tok-1", UserID: "usr-1", Email: "t@test.cd", ExpiresAt: future, RefreshExpiresAt: future}

	store.SignIn(sess)
	assert.Equal(t, EventSignedIn, nextEvent().Type)
	assert.Equal(t, 1, store.Active())

	got, ok := store.Get("tok-1")
	require.True(t, ok)
	assert.Equal(t, "usr-1", got.UserID)

	// refresh replaces the token id
	refreshed := sess
	refreshed.TokenID = "tok-2"
	store.Refresh("tok-1", refreshed)
	assert.Equal(t, EventTokenRefreshed, nextEvent().Type)

	_, ok = store.Get("tok-1")
	assert.False(t, ok)
	_, ok = store.Get("tok-2")
	assert.True(t, ok)

	store.RecoveryRequested("usr-1", "t@test.cd")
	evt := nextEvent()
	assert.Equal(t, EventPasswordRecovery, evt.Type)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "usr-1", evt.Session.UserID)

	store.SignOut("tok-2")
	assert.Equal(t, EventSignedOut, nextEvent().Type)
	assert.Equal(t, 0, store.Active())

	// signing out an unknown token emits nothing
	store.SignOut("tok-2")
	select {
	case evt := <-events:
		t.Fatalf("unexpected event %v", evt.Type)
	default:
	}
}

func TestStore_expiredSessionIsPruned(t *testing.T) {
	store := NewStore(NewBroker())

	past := time.Now().Add(-time.Minute)
	store.SignIn(Session{TokenID: "tok-1", UserID: "usr-1", RefreshExpiresAt: past})

	_, ok := store.Get("tok-1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Active())
}
