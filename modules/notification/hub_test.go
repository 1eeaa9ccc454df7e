package notification

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/kanban-task-service/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) events.TaskEvent {
	t.Helper()
	select {
	case evt, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return events.TaskEvent{}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestHub_FanOutToAllSubscribers(t *testing.T) {
	hub := NewHub(8)
	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Publish(events.Deleted("t-1"))

	assert.Equal(t, "t-1", receive(t, a).TaskID())
	assert.Equal(t, "t-1", receive(t, b).TaskID())
	assert.Equal(t, uint64(2), hub.Stats().Delivered)
}

func TestHub_NoSubscribersDiscards(t *testing.T) {
	hub := NewHub(8)
	hub.Publish(events.Deleted("t-1"))

	stats := hub.Stats()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Zero(t, stats.Delivered)
	assert.Zero(t, stats.Dropped)
}

func TestHub_LateSubscriberSeesNoHistory(t *testing.T) {
	hub := NewHub(8)
	early := hub.Subscribe()
	hub.Publish(events.Deleted("before"))

	late := hub.Subscribe()
	hub.Publish(events.Deleted("after"))

	assert.Equal(t, "before", receive(t, early).TaskID())
	assert.Equal(t, "after", receive(t, early).TaskID())
	assert.Equal(t, "after", receive(t, late).TaskID())
	assertNoEvent(t, late)
}

func TestHub_PreservesOrderPerSubscriber(t *testing.T) {
	hub := NewHub(100)
	sub := hub.Subscribe()

	for i := 0; i < 50; i++ {
		hub.Publish(events.Deleted(fmt.Sprintf("t-%d", i)))
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, fmt.Sprintf("t-%d", i), receive(t, sub).TaskID())
	}
}

func TestHub_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub(2)
	slow := hub.Subscribe()
	fast := hub.SubscribeBuffered(10)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(events.Deleted(fmt.Sprintf("t-%d", i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("t-%d", i), receive(t, fast).TaskID())
	}
	// The slow subscriber keeps the first events that fit and loses the rest.
	assert.Equal(t, "t-0", receive(t, slow).TaskID())
	assert.Equal(t, "t-1", receive(t, slow).TaskID())
	assertNoEvent(t, slow)
	assert.Equal(t, uint64(3), hub.Stats().Dropped)
}

func TestSubscription_Close(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	sub.Close()

	assert.Zero(t, hub.SubscriberCount())
	_, ok := <-sub.Events()
	assert.False(t, ok)

	hub.Publish(events.Deleted("t-1"))
	assert.Zero(t, hub.Stats().Delivered)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe()

	hub.Close()
	_, ok := <-sub.Events()
	assert.False(t, ok)

	hub.Publish(events.Deleted("t-1"))
	sub.Close()

	late := hub.Subscribe()
	_, ok = <-late.Events()
	assert.False(t, ok)
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(16)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				hub.Publish(events.Deleted(fmt.Sprintf("%d-%d", i, j)))
			}
		}(i)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe()
			for j := 0; j < 10; j++ {
				select {
				case <-sub.Events():
				default:
				}
			}
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.SubscriberCount())
	assert.Equal(t, uint64(800), hub.Stats().Published)
}
