package handlers

import (
	"io"
	"testing"

	"github.com/mimecast/logprobe/internal/filter"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/io/stream"
	"github.com/mimecast/logprobe/internal/testutil"
)

// BenchmarkHandle measures decoding fragments cut at arbitrary boundaries.
func BenchmarkHandle(b *testing.B) {
	old := dlog.Client
	dlog.Client = dlog.New(dlog.Info, io.Discard)
	defer func() { dlog.Client = old }()

	data := testutil.Stream(testutil.GenerateRecords(1000)...)
	const cut = 1000

	for _, tt := range []struct {
		name   string
		legacy bool
		filter filter.Filter
	}{
		{"CarryOver", false, filter.NewNoop()},
		{"Legacy", true, filter.NewNoop()},
		{"Include", false, filter.New([]int{1, 3}, nil)},
	} {
		b.Run(tt.name, func(b *testing.B) {
			h, err := NewRecordHandler(Options{
				Filter:        tt.filter,
				Formatted:     true,
				LegacyFraming: tt.legacy,
				Sink:          SinkFunc(func(label, text string) {}),
			})
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				for offset := 0; offset < len(data); offset += cut {
					h.Handle(stream.Fragment{Data: data[offset:min(offset+cut, len(data))], Reads: 1})
				}
				h.Flush()
			}
		})
	}
}
