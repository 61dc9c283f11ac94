// Package stream reads the log server connection in drain cycles. A single
// pump goroutine reads the socket through a fixed size receive buffer and
// hands out pooled copies of every read. A read cycle waits for the first read and
// then folds all reads already received into one fragment, so a record
// larger than the receive buffer is still assembled in one piece.
package stream

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/errors"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/io/pool"
)

// Dialer opens the connection to the log server. *net.Dialer and the SSH
// jump host dialer implement it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Fragment is the outcome of one drain cycle.
type Fragment struct {
	// Data holds all bytes received during the cycle.
	Data []byte
	// Reads is the number of socket reads folded into Data.
	Reads int
}

// Reader owns the connection to the log server.
type Reader struct {
	conn    net.Conn
	bufSize int
	chunks  chan *bytes.Buffer
	// err is set by the pump before chunks is closed.
	err       error
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the endpoint and returns a reader for the connection. The
// socket receive buffer is sized to bufSize. A nil dialer dials TCP
// directly. Failures wrap errors.ErrConnectionFailed.
func Dial(ctx context.Context, dialer Dialer, endpoint string, bufSize int) (*Reader, error) {
	if dialer == nil {
		dialer = &net.Dialer{Timeout: constants.ConnectTimeout}
	}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, errors.New("%w: %w", errors.ErrConnectionFailed, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetReadBuffer(bufSize); err != nil {
			dlog.Client.Debug("Unable to set socket receive buffer", bufSize, err)
		}
	}
	return New(conn, bufSize), nil
}

// New wraps an established connection and starts reading from it.
func New(conn net.Conn, bufSize int) *Reader {
	if bufSize < constants.MinReceiveBufferSize {
		bufSize = constants.DefaultReceiveBufferSize
	}
	r := &Reader{
		conn:    conn,
		bufSize: bufSize,
		chunks:  make(chan *bytes.Buffer, constants.ChunkChannelSize),
		done:    make(chan struct{}),
	}
	go r.pump()
	return r
}

// RemoteAddr returns the address of the log server.
func (r *Reader) RemoteAddr() string {
	return r.conn.RemoteAddr().String()
}

func (r *Reader) pump() {
	defer close(r.chunks)

	buf := make([]byte, r.bufSize)
	for {
		n, err := r.conn.Read(buf)
		if n > 0 {
			chunk := pool.GetBytesBuffer(buf[:n])
			select {
			case r.chunks <- chunk:
			case <-r.done:
				pool.RecycleBytesBuffer(chunk)
				r.err = errors.ErrLocalShutdown
				return
			}
		}
		if err != nil {
			r.err = r.classify(err)
			dlog.Client.Trace("Stream pump stopped", r.err)
			return
		}
	}
}

func (r *Reader) classify(err error) error {
	switch {
	case r.closed.Load() || errors.Is(err, net.ErrClosed):
		return errors.ErrLocalShutdown
	case errors.Is(err, io.EOF):
		return errors.ErrConnectionClosed
	default:
		return errors.New("%w: %w", errors.ErrReadFailed, err)
	}
}

// ReadCycle waits for data and returns everything received so far as one
// fragment. Only the wait for the first read blocks, the rest of the cycle
// takes what is already there. Once the connection is gone the error tells
// why: errors.ErrLocalShutdown after Close or context cancellation,
// errors.ErrConnectionClosed when the server hung up and errors.ErrReadFailed
// otherwise.
func (r *Reader) ReadCycle(ctx context.Context) (Fragment, error) {
	var fragment Fragment

	select {
	case chunk, ok := <-r.chunks:
		if !ok {
			return fragment, r.err
		}
		fragment.Data = make([]byte, 0, max(chunk.Len(), constants.FragmentInitialCapacity))
		fragment.Data = append(fragment.Data, chunk.Bytes()...)
		fragment.Reads = 1
		pool.RecycleBytesBuffer(chunk)
	case <-ctx.Done():
		return fragment, errors.Wrap(errors.ErrLocalShutdown, ctx.Err().Error())
	}

	for {
		select {
		case chunk, ok := <-r.chunks:
			if !ok {
				// The error is returned by the next cycle.
				return fragment, nil
			}
			fragment.Data = append(fragment.Data, chunk.Bytes()...)
			fragment.Reads++
			pool.RecycleBytesBuffer(chunk)
		default:
			return fragment, nil
		}
	}
}

// Start runs read cycles back to back and calls fn with every fragment until
// the context is done or the connection ends. The returned error is never
// nil, see ReadCycle for its meaning.
func (r *Reader) Start(ctx context.Context, fn func(Fragment)) error {
	for {
		fragment, err := r.ReadCycle(ctx)
		if err != nil {
			return err
		}
		fn(fragment)
	}
}

// Close closes the connection. It is safe to call it more than once and
// concurrently with a read cycle, only the first call closes.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		close(r.done)
		r.closeErr = r.conn.Close()
		dlog.Client.Trace("Connection closed")
	})
	return r.closeErr
}
