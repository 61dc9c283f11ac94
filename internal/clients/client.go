// Package clients provides the LogProbe client. It connects to a single log
// server, reads the stream in drain cycles and hands every fragment to the
// record handler until the connection ends or the context is cancelled.
package clients

import "context"

// Client is started by main and returns the process exit status.
type Client interface {
	// Start runs the client until the context is done or the connection
	// ends. Every message received on statsCh prints the runtime stats.
	Start(ctx context.Context, statsCh <-chan string) int
}
