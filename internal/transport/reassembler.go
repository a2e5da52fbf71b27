package transport

import "fmt"

// Reassembler collects the chunks of one message, in any order, and
// concatenates them by index once all have arrived. It is not safe for
// concurrent use; callers feed it from a single receive loop.
type Reassembler struct {
	total    uint16
	received [][]byte
	filled   []bool
	count    uint16
}

// NewReassembler prepares a buffer for a message of total chunks.
func NewReassembler(total uint16) *Reassembler {
	return &Reassembler{
		total:    total,
		received: make([][]byte, total),
		filled:   make([]bool, total),
	}
}

// Add stores one chunk. Re-adding an already filled index does not advance
// the completion count. It rejects chunks whose total disagrees with the
// expected count or whose index is out of range, and reports whether the
// message is now complete.
func (r *Reassembler) Add(c *Chunk) (bool, error) {
	if c.Total != r.total {
		return false, fmt.Errorf("chunk total mismatch: expected %d, got %d", r.total, c.Total)
	}
	if c.Index >= r.total {
		return false, fmt.Errorf("chunk index %d out of range (total %d)", c.Index, r.total)
	}

	if !r.filled[c.Index] {
		r.count++
	}
	r.filled[c.Index] = true
	r.received[c.Index] = c.Data

	return r.count == r.total, nil
}

// Complete reports whether every index has been filled.
func (r *Reassembler) Complete() bool {
	return r.count == r.total
}

// Progress returns (received, total) distinct chunk counts.
func (r *Reassembler) Progress() (uint16, uint16) {
	return r.count, r.total
}

// Reassemble concatenates the chunk data in index order. It fails if any
// index is still missing.
func (r *Reassembler) Reassemble() ([]byte, error) {
	if !r.Complete() {
		return nil, fmt.Errorf("cannot reassemble: only %d/%d chunks received", r.count, r.total)
	}

	size := 0
	for _, d := range r.received {
		size += len(d)
	}
	out := make([]byte, 0, size)
	for i, d := range r.received {
		if !r.filled[i] {
			return nil, fmt.Errorf("missing chunk %d", i)
		}
		out = append(out, d...)
	}
	return out, nil
}
