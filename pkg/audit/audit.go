// Package audit records buffer lifecycle events (create, close, save,
// load) in a bounded in-memory trail. Attach a Trail to a buffer with
// shmbuf.WithAuditor.
package audit

import (
	"time"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/srediag/shmbuf/api"
)

const pollBatch = 64

// Trail is a bounded FIFO of lifecycle events. When full, the oldest
// event is dropped to admit the newest. Safe for concurrent use.
type Trail struct {
	events   *queue.Queue
	capacity int64
}

// NewTrail returns a trail holding at most capacity events.
func NewTrail(capacity int64) *Trail {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Trail{
		events:   queue.New(capacity),
		capacity: capacity,
	}
}

// Record appends e to the trail, evicting the oldest event if the
// trail is at capacity. It implements api.Auditor.
func (t *Trail) Record(e api.Event) {
	for t.events.Len() >= t.capacity {
		if _, err := t.events.Poll(1, time.Millisecond); err != nil {
			break
		}
	}
	_ = t.events.Put(e)
}

// Len returns the number of buffered events.
func (t *Trail) Len() int64 {
	return t.events.Len()
}

// Drain removes and returns all currently buffered events, oldest
// first. Events recorded concurrently with a drain land in either this
// batch or the next.
func (t *Trail) Drain() []api.Event {
	var out []api.Event
	for !t.events.Empty() {
		items, err := t.events.Poll(pollBatch, time.Millisecond)
		if err != nil {
			break
		}
		for _, item := range items {
			if e, ok := item.(api.Event); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// Dispose releases the trail. Record and Drain must not be called
// afterwards.
func (t *Trail) Dispose() {
	t.events.Dispose()
}
