package sse

import (
	"sync"
)

// Event names published when an employee's shift changes state.
const (
	EventShiftOpened = "shift_opened"
	EventShiftClosed = "shift_closed"
)

// subscriberBuffer bounds each subscriber's queue. Shift events are rare.
const subscriberBuffer = 4

// Event is a state change delivered to an employee's open streams.
type Event struct {
	EmployeeID string
	Event      string
	Data       interface{}
}

// Hub fans shift events out to every stream an employee has open.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for an employee and returns its channel and the
// cleanup that unregisters and closes it.
func (h *Hub) Subscribe(employeeID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)

	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to the employee's streams without blocking. A full
// subscriber misses the event, so consumers must not treat the feed as the
// only source of truth: live streams also re-read the open period on a slow
// cadence and converge on the real state within that interval.
func (h *Hub) Publish(employeeID string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.EmployeeID = employeeID
	delivered := 0
	for ch := range h.subscribers[employeeID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}

// TotalSubscribers counts open streams across all employees.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
