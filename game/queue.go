package game

import "sync"

// Queue buffers commands between network arrival and the next tick.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
	seq     uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends commands in the order given, all attributed to senderID.
func (q *Queue) Enqueue(senderID string, commands ...Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, cmd := range commands {
		q.seq++
		q.entries = append(q.entries, Entry{
			Seq:      q.seq,
			SenderID: senderID,
			Command:  cmd,
		})
	}
}

// Drain removes and returns every queued entry in arrival order.
func (q *Queue) Drain() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.entries
	q.entries = nil

	return drained
}

// Remove discards every queued entry from senderID and returns how many
// were dropped.
func (q *Queue) Remove(senderID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	for _, entry := range q.entries {
		if entry.SenderID != senderID {
			kept = append(kept, entry)
		}
	}

	removed := len(q.entries) - len(kept)
	q.entries = kept

	return removed
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}
