// Package handlers turns drain cycle fragments into displayed records.
package handlers

import (
	"fmt"
	"sync/atomic"

	"github.com/mimecast/logprobe/internal/filter"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/io/stream"
	"github.com/mimecast/logprobe/internal/metrics"
	"github.com/mimecast/logprobe/internal/protocol"
)

// RecordHandler splits fragments into records, filters them by tag and
// emits the accepted ones to a sink. It is driven by a single goroutine,
// only the counters may be read concurrently.
type RecordHandler struct {
	assembler *protocol.Assembler
	decoder   *protocol.Decoder
	filter    filter.Filter
	formatted bool
	sink      Sink
	metrics   *metrics.Metrics

	cycles       atomic.Uint64
	bytesRead    atomic.Uint64
	displayed    atomic.Uint64
	filtered     atomic.Uint64
	decodeErrors atomic.Uint64
	pending      atomic.Int64
}

// Options configure a RecordHandler.
type Options struct {
	Decoder   *protocol.Decoder
	Filter    filter.Filter
	Formatted bool
	// LegacyFraming decodes every fragment on its own.
	LegacyFraming bool
	// Sink defaults to ConsoleSink.
	Sink Sink
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// NewRecordHandler returns a handler. A nil decoder decodes the default
// code page.
func NewRecordHandler(opts Options) (*RecordHandler, error) {
	decoder := opts.Decoder
	if decoder == nil {
		var err error
		if decoder, err = protocol.NewDecoder(protocol.DefaultEncoding); err != nil {
			return nil, err
		}
	}
	sink := opts.Sink
	if sink == nil {
		sink = ConsoleSink{}
	}
	return &RecordHandler{
		assembler: protocol.NewAssembler(opts.LegacyFraming),
		decoder:   decoder,
		filter:    opts.Filter,
		formatted: opts.Formatted,
		sink:      sink,
		metrics:   opts.Metrics,
	}, nil
}

// Handle processes the fragment of one drain cycle.
func (h *RecordHandler) Handle(fragment stream.Fragment) {
	h.cycles.Add(1)
	h.bytesRead.Add(uint64(len(fragment.Data)))

	for _, chunk := range h.assembler.Feed(fragment.Data) {
		h.handleChunk(chunk)
	}
	pending := h.assembler.Pending()
	h.pending.Store(int64(pending))
	h.metrics.Cycle(len(fragment.Data), fragment.Reads, pending)
	dlog.Client.Trace("Handled fragment", len(fragment.Data), fragment.Reads, pending)
}

// Flush processes an unterminated record carried over from the last
// fragment. It is called once after the stream has ended.
func (h *RecordHandler) Flush() {
	tail := h.assembler.Flush()
	h.pending.Store(0)
	if len(tail) > 0 {
		dlog.Client.Debug("Flushing unterminated record", len(tail))
		h.handleChunk(tail)
	}
}

func (h *RecordHandler) handleChunk(chunk []byte) {
	record, ok, err := h.decoder.Decode(chunk)
	if err != nil {
		h.decodeErrors.Add(1)
		h.metrics.DecodeError()
		dlog.Client.Error(err)
		return
	}
	if !ok {
		return
	}

	label := protocol.Label(record.Tag, h.formatted)
	if !h.filter.ShouldAccept(record.Tag) {
		h.filtered.Add(1)
		h.metrics.Filtered(label)
		return
	}
	h.displayed.Add(1)
	h.metrics.Displayed(label)
	h.sink.Emit(label, record.Text)
}

// Stats returns the counters as a single line.
func (h *RecordHandler) Stats() string {
	return fmt.Sprintf("cycles=%d|bytes=%d|displayed=%d|filtered=%d|decodeErrors=%d|pending=%d",
		h.cycles.Load(), h.bytesRead.Load(), h.displayed.Load(), h.filtered.Load(),
		h.decodeErrors.Load(), h.pending.Load())
}

// Displayed returns the number of records emitted to the sink.
func (h *RecordHandler) Displayed() uint64 {
	return h.displayed.Load()
}

// DecodeErrors returns the number of chunks with an unparsable tag.
func (h *RecordHandler) DecodeErrors() uint64 {
	return h.decodeErrors.Load()
}
