package handlers

import (
	"fmt"

	"github.com/mimecast/logprobe/internal/color"
	"github.com/mimecast/logprobe/internal/io/dlog"
)

// Sink receives the accepted records in stream order.
type Sink interface {
	Emit(label, text string)
}

// ConsoleSink displays records as "[LABEL] text" through the client logger,
// so record lines never interleave with status lines.
type ConsoleSink struct{}

// Emit displays one record. The label is painted yellow.
func (ConsoleSink) Emit(label, text string) {
	dlog.Client.Raw(fmt.Sprintf("[%s] %s", color.PaintStr(label, color.FgYellow), text))
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(label, text string)

// Emit calls f.
func (f SinkFunc) Emit(label, text string) {
	f(label, text)
}
