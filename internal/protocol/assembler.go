package protocol

import "github.com/mimecast/logprobe/internal/constants"

// Assembler turns drain cycle fragments into delimited chunks.
//
// A fragment may end in the middle of a record. By default the unterminated
// tail is kept and prepended to the next fragment, so a record split across
// two cycles is decoded once and in full. In legacy mode every fragment is
// split on its own and the tail is handed out as if it were complete.
type Assembler struct {
	pending    []byte
	legacy     bool
	maxPending int
}

// NewAssembler returns an assembler. With legacy set unterminated tails are
// not carried over.
func NewAssembler(legacy bool) *Assembler {
	return &Assembler{
		legacy:     legacy,
		maxPending: constants.MaxPendingBytes,
	}
}

// Feed splits the fragment prefixed by the carried over tail. The returned
// chunks are in stream order and include empty ones.
func (a *Assembler) Feed(fragment []byte) [][]byte {
	data := fragment
	if len(a.pending) > 0 {
		data = append(a.pending, fragment...)
		a.pending = nil
	}

	chunks := Split(data)
	if a.legacy {
		return chunks
	}

	last := len(chunks) - 1
	tail := chunks[last]
	chunks = chunks[:last]
	switch {
	case len(tail) == 0:
	case len(tail) > a.maxPending:
		// Oversized tails are handed out instead of being buffered.
		chunks = append(chunks, tail)
	default:
		a.pending = append(make([]byte, 0, len(tail)), tail...)
	}
	return chunks
}

// Pending returns the number of bytes carried over to the next fragment.
func (a *Assembler) Pending() int {
	return len(a.pending)
}

// Flush hands out the carried over tail, if any. It is called once the
// stream has ended.
func (a *Assembler) Flush() []byte {
	tail := a.pending
	a.pending = nil
	return tail
}
