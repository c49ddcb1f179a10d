package web

import "sync"

// sequencer keeps each browser's pointer events in the order it sent them.
// Requests can overtake each other on parallel connections; one that
// arrives after a later event from the same client is stale and dropped.
// Posting a press after its release would leave the node held.
type sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

func newSequencer() *sequencer {
	return &sequencer{last: make(map[string]uint64)}
}

// admit calls post unless seq is stale for client, and reports whether it
// did. The lock is held across post so admitted events reach the loop in
// sequence order. Events without a sequence number are always admitted.
func (q *sequencer) admit(client string, seq uint64, post func() error) (bool, error) {
	if seq == 0 {
		return true, post()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if seq <= q.last[client] {
		return false, nil
	}
	if err := post(); err != nil {
		return true, err
	}
	q.last[client] = seq
	return true, nil
}
