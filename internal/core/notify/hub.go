package notify

import (
	"sync"

	"github.com/eapache/queue"
)

// Hub fans events out to subscribers. Publish never blocks and never drops;
// each subscriber drains its own unbounded queue.
type Hub struct {
	mu          sync.Mutex
	subscribers []*Subscription
	closed      bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscription receives events in publish order on C.
type Subscription struct {
	C <-chan Event

	hub     *Hub
	out     chan Event
	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	closed  bool
	done    chan struct{}
}

// Subscribe registers a new observer. buffer sizes the outbound channel.
func (hub *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 1
	}
	sub := &Subscription{
		hub:     hub,
		out:     make(chan Event, buffer),
		pending: queue.New(),
		done:    make(chan struct{}),
	}
	sub.C = sub.out
	sub.cond = sync.NewCond(&sub.mu)

	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		sub.closed = true
		close(sub.done)
		close(sub.out)
		return sub
	}
	hub.subscribers = append(hub.subscribers, sub)
	hub.mu.Unlock()

	go sub.pump()
	return sub
}

// Publish queues event for every subscriber.
func (hub *Hub) Publish(event Event) {
	hub.mu.Lock()
	subscribers := append([]*Subscription(nil), hub.subscribers...)
	hub.mu.Unlock()

	for _, sub := range subscribers {
		sub.enqueue(event)
	}
}

// Close detaches and closes every subscriber. Later publishes are ignored.
func (hub *Hub) Close() {
	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		return
	}
	hub.closed = true
	subscribers := hub.subscribers
	hub.subscribers = nil
	hub.mu.Unlock()

	for _, sub := range subscribers {
		sub.shutdown()
	}
}

// Close detaches the subscription and closes C. Queued events are discarded.
func (sub *Subscription) Close() {
	sub.hub.remove(sub)
	sub.shutdown()
}

func (hub *Hub) remove(target *Subscription) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for i, sub := range hub.subscribers {
		if sub == target {
			hub.subscribers = append(hub.subscribers[:i], hub.subscribers[i+1:]...)
			return
		}
	}
}

func (sub *Subscription) enqueue(event Event) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.pending.Add(event)
	sub.cond.Signal()
}

func (sub *Subscription) shutdown() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	close(sub.done)
	sub.cond.Signal()
	sub.mu.Unlock()
}

func (sub *Subscription) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		for sub.pending.Length() == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			return
		}
		event := sub.pending.Remove().(Event)
		sub.mu.Unlock()

		select {
		case sub.out <- event:
		case <-sub.done:
			return
		}
	}
}
