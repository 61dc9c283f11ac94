package clients

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/mimecast/logprobe/internal/color"
	"github.com/mimecast/logprobe/internal/io/dlog"
)

// statsSource provides the stream counters.
type statsSource interface {
	Stats() string
}

// stats prints the client statistics whenever requested on statsCh.
type stats struct {
	endpoint string
	source   statsSource
	started  time.Time
	pause    time.Duration
}

func newStats(endpoint string, source statsSource, pause time.Duration) *stats {
	return &stats{
		endpoint: endpoint,
		source:   source,
		started:  time.Now(),
		pause:    pause,
	}
}

// Start waits for stats requests until the context is done.
func (s *stats) Start(ctx context.Context, statsCh <-chan string) {
	for {
		select {
		case message := <-statsCh:
			s.printStatsDueInterrupt(message)
		case <-ctx.Done():
			return
		}
	}
}

// printStatsDueInterrupt holds back the record output while the stats are
// shown, so they don't scroll away immediately.
func (s *stats) printStatsDueInterrupt(message string) {
	dlog.Client.Pause()
	defer dlog.Client.Resume()

	if message != "" {
		dlog.Client.Direct(fmt.Sprintf(" %s", message))
	}
	dlog.Client.Direct(color.PaintStrWithAttr(s.statsLine(), color.FgCyan, color.AttrBold))
	if s.pause > 0 {
		time.Sleep(s.pause)
	}
}

func (s *stats) statsLine() string {
	return fmt.Sprintf("Stream stats: endpoint=%s|uptime=%s|%s|goroutines=%d",
		s.endpoint, time.Since(s.started).Round(time.Second), s.source.Stats(),
		runtime.NumGoroutine())
}
