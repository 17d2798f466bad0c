package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays visible unless dismissed first.
const DefaultTTL = 5 * time.Second

// Type classifies a user-facing event.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Notification is one ephemeral user-facing event. Entries are never
// mutated after creation; they disappear on expiry or dismissal.
type Notification struct {
	ID        int64
	Type      Type
	Title     string
	Message   string
	CreatedAt time.Time
}

// Sink receives every pushed notification. It runs on the pusher's
// goroutine and must not block.
type Sink func(Notification)

// Queue is a self-expiring log of notifications. Ids increase
// monotonically for the lifetime of the process; entries auto-expire
// after the configured TTL, so the queue is self-bounding.
type Queue struct {
	mu      sync.Mutex
	ttl     time.Duration
	nextID  int64
	entries map[int64]Notification
	order   []int64
	timers  map[int64]*time.Timer
	sink    Sink
}

// NewQueue creates a queue whose entries expire after ttl. A
// non-positive ttl falls back to DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:     ttl,
		entries: make(map[int64]Notification),
		timers:  make(map[int64]*time.Timer),
	}
}

// SetSink registers a callback invoked for every pushed entry.
func (q *Queue) SetSink(sink Sink) {
	q.mu.Lock()
	q.sink = sink
	q.mu.Unlock()
}

// Push appends an entry and schedules its automatic removal. The
// returned id can be used to dismiss the entry early.
func (q *Queue) Push(typ Type, title, message string) int64 {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	entry := Notification{
		ID:        id,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	q.entries[id] = entry
	q.order = append(q.order, id)
	q.timers[id] = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(entry)
	}
	return id
}

// Dismiss removes an entry immediately. Dismissing an expired or
// already-dismissed id is a no-op.
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[id]; !ok {
		return
	}
	delete(q.entries, id)
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Snapshot returns the live entries in insertion order.
func (q *Queue) Snapshot() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.entries[id])
	}
	return out
}

// Len returns the number of live entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}
