package engine

import (
	"testing"

	"github.com/remotune/remotune/internal/resolver"
)

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Fill the buffer past capacity; sends must not block.
	for i := 0; i < eventBufferSize*2; i++ {
		sub.send(TimeUpdate{CurrentTime: float64(i)})
	}

	if got := len(sub.eventCh); got != eventBufferSize {
		t.Errorf("buffered events = %d, want %d", got, eventBufferSize)
	}
}

func TestEngine_SubscribeUnsubscribe(t *testing.T) {
	e, _, _ := newTestEngine(&resolver.Mock{})
	defer e.Close()

	sub := e.Subscribe()
	e.SetVolume(0.5)

	select {
	case ev := <-sub.Events:
		if _, ok := ev.(StateChanged); !ok {
			t.Errorf("event = %T, want StateChanged", ev)
		}
	default:
		t.Fatal("subscriber should have received a StateChanged event")
	}

	e.Unsubscribe(sub)
	select {
	case <-sub.Done:
	default:
		t.Error("Unsubscribe should close Done")
	}
}
