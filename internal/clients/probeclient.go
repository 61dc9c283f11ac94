package clients

import (
	"context"

	"github.com/mimecast/logprobe/internal/clients/handlers"
	"github.com/mimecast/logprobe/internal/color"
	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/errors"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/io/stream"
	"github.com/mimecast/logprobe/internal/version"
)

type state string

const (
	stateInitializing state = "Initializing"
	stateConnecting   state = "Connecting"
	stateConnected    state = "Connected"
	stateShuttingDown state = "Shutting down"
	stateTerminated   state = "Terminated"
)

// ProbeClient reads one log server connection and displays its records.
type ProbeClient struct {
	endpoint   string
	bufferSize int
	dialer     stream.Dialer
	handler    *handlers.RecordHandler
	stats      *stats
}

var _ Client = (*ProbeClient)(nil)

// ProbeOptions configure a ProbeClient.
type ProbeOptions struct {
	// Endpoint is the ip:port of the log server.
	Endpoint   string
	BufferSize int
	// Dialer defaults to a direct TCP dialer.
	Dialer  stream.Dialer
	Handler *handlers.RecordHandler
}

// NewProbeClient returns a client ready to be started.
func NewProbeClient(opts ProbeOptions) *ProbeClient {
	c := &ProbeClient{
		endpoint:   opts.Endpoint,
		bufferSize: opts.BufferSize,
		dialer:     opts.Dialer,
		handler:    opts.Handler,
		stats:      newStats(opts.Endpoint, opts.Handler, constants.StatsPauseDuration),
	}
	c.setState(stateInitializing)
	return c
}

// Start connects to the log server and displays records until the context
// is cancelled or the connection ends. Only a failed connect is reported
// through the exit status, every later failure ends the run normally.
func (c *ProbeClient) Start(ctx context.Context, statsCh <-chan string) int {
	c.setState(stateConnecting)
	dlog.Client.Info("Connecting to log server...")
	dlog.Client.Debug("Dialing", c.endpoint, "bufsize", c.bufferSize)

	reader, err := stream.Dial(ctx, c.dialer, c.endpoint, c.bufferSize)
	if err != nil {
		dlog.Client.Error("Failed to create socket", err)
		c.setState(stateTerminated)
		return constants.ExitConnectFailed
	}
	defer reader.Close()

	c.setState(stateConnected)
	dlog.Client.Info("Connected successfully.")

	statsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.stats.Start(statsCtx, statsCh)

	err = reader.Start(ctx, c.handler.Handle)

	c.setState(stateShuttingDown)
	switch {
	case errors.Is(err, errors.ErrLocalShutdown):
		// An unterminated record may still be in transit, it's dropped.
	case errors.Is(err, errors.ErrConnectionClosed):
		c.handler.Flush()
		dlog.Client.Info("Connection closed by the log server.")
	default:
		dlog.Client.Error("Exception while reading", err)
	}
	dlog.Client.Info("Shutting down...")

	if err := reader.Close(); err != nil {
		dlog.Client.Debug("Closing the connection", err)
	}
	dlog.Client.Info("Socket has been shut down.")
	c.setState(stateTerminated)
	return constants.ExitOK
}

func (c *ProbeClient) setState(s state) {
	dlog.Client.Trace("Client state", string(s))
	color.SetTitle(version.Name + " - " + string(s))
}
