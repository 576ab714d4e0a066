package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestNotifier(buffer int) *Notifier {
	return New(buffer, zerolog.Nop())
}

func receiveOne(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	n := newTestNotifier(DefaultBuffer)
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	n.Publish("update:facility", map[string]string{"code": "F1"})

	event := receiveOne(t, sub)
	if event.Name != "update:facility" {
		t.Errorf("event name = %q, want %q", event.Name, "update:facility")
	}
	if event.ID == "" {
		t.Error("event has no id")
	}
}

func TestUnsubscribedReceivesNothing(t *testing.T) {
	n := newTestNotifier(DefaultBuffer)
	sub := n.Subscribe()
	n.Unsubscribe(sub)

	n.Publish("update:facility", nil)

	// The channel is closed on unsubscribe, so a receive reports closure
	// rather than a delivery.
	if _, ok := <-sub.Events(); ok {
		t.Error("unsubscribed subscriber received an event")
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	n := newTestNotifier(DefaultBuffer)

	n.Publish("create:report", nil)

	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	select {
	case event := <-sub.Events():
		t.Errorf("late subscriber received replayed event %q", event.Name)
	default:
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	n := newTestNotifier(DefaultBuffer)
	sub := n.Subscribe()

	n.Unsubscribe(sub)
	n.Unsubscribe(sub)
	n.Unsubscribe(nil)

	if n.Len() != 0 {
		t.Errorf("len = %d, want 0", n.Len())
	}
}

func TestFullBufferKeepsNewest(t *testing.T) {
	n := newTestNotifier(2)
	sub := n.Subscribe()
	defer n.Unsubscribe(sub)

	for i := 0; i < 5; i++ {
		n.Publish("update:report", i)
	}

	// Oldest deliveries were dropped; the final event always lands.
	var got []interface{}
	for len(got) < 2 {
		got = append(got, receiveOne(t, sub).Data)
	}
	if got[len(got)-1] != 4 {
		t.Errorf("last delivered = %v, want 4", got[len(got)-1])
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	n := newTestNotifier(1)
	slow := n.Subscribe()
	defer n.Unsubscribe(slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			n.Publish("create:report", i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestConcurrentPublishSubscribeUnsubscribe(t *testing.T) {
	n := newTestNotifier(4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := n.Subscribe()
				n.Publish("update:facility", fmt.Sprintf("%d-%d", worker, j))
				n.Unsubscribe(sub)
			}
		}(i)
	}
	wg.Wait()

	if n.Len() != 0 {
		t.Errorf("len = %d, want 0 after all unsubscribes", n.Len())
	}
}

func TestCloseEndsAllSubscribers(t *testing.T) {
	n := newTestNotifier(DefaultBuffer)
	a := n.Subscribe()
	b := n.Subscribe()

	n.Close()

	if _, ok := <-a.Events(); ok {
		t.Error("subscriber a still open after Close")
	}
	if _, ok := <-b.Events(); ok {
		t.Error("subscriber b still open after Close")
	}
	if n.Len() != 0 {
		t.Errorf("len = %d, want 0", n.Len())
	}
}
