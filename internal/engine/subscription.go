package engine

const eventBufferSize = 64

// Subscription delivers the engine's ordered event stream to one consumer.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	eventCh chan Event
	doneCh  chan struct{}
}

// newSubscription creates a subscription with a buffered event channel.
func newSubscription() *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// close signals the subscriber to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers an event without blocking. A subscriber that stops draining
// loses events rather than stalling the engine.
func (s *Subscription) send(e Event) {
	select {
	case s.eventCh <- e:
	default:
	}
}
