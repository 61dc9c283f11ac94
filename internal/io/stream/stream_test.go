package stream

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/mimecast/logprobe/internal/errors"
	"github.com/mimecast/logprobe/internal/testutil"
)

// scriptedConn returns one scripted read per Read call and err once the
// script is exhausted.
type scriptedConn struct {
	net.Conn
	reads     chan []byte
	err       error
	closed    chan struct{}
	closeOnce sync.Once
	closes    int
}

func newScriptedConn(err error, reads ...string) *scriptedConn {
	c := &scriptedConn{
		reads:  make(chan []byte, len(reads)),
		err:    err,
		closed: make(chan struct{}),
	}
	for _, read := range reads {
		c.reads <- []byte(read)
	}
	if err != nil {
		close(c.reads)
	}
	return c
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	select {
	case data, ok := <-c.reads:
		if !ok {
			return 0, c.err
		}
		return copy(p, data), nil
	case <-c.closed:
		return 0, net.ErrClosed
	}
}

func (c *scriptedConn) Close() error {
	c.closes++
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func waitQueued(t *testing.T, r *Reader, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for len(r.chunks) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d queued reads", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReadCycleFoldsAvailableReads(t *testing.T) {
	conn := newScriptedConn(nil, "001He", "llo\x00", "002Go", "od\x00")
	r := New(conn, 5)
	defer r.Close()

	waitQueued(t, r, 4)
	fragment, err := r.ReadCycle(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 4, fragment.Reads)
	testutil.AssertEqual(t, "001Hello\x00002Good\x00", string(fragment.Data))
}

func TestReadCycleEndOfStream(t *testing.T) {
	t.Run("remote close", func(t *testing.T) {
		r := New(newScriptedConn(io.EOF, "001bye\x00"), 16)
		defer r.Close()

		fragment, err := r.ReadCycle(context.Background())
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, "001bye\x00", string(fragment.Data))

		_, err = r.ReadCycle(context.Background())
		if !errors.Is(err, errors.ErrConnectionClosed) {
			t.Fatalf("expected ErrConnectionClosed, got %v", err)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		r := New(newScriptedConn(errors.New("connection reset by peer")), 16)
		defer r.Close()

		_, err := r.ReadCycle(context.Background())
		if !errors.Is(err, errors.ErrReadFailed) {
			t.Fatalf("expected ErrReadFailed, got %v", err)
		}
		testutil.AssertContains(t, err.Error(), "connection reset by peer")
	})
}

func TestCloseDuringReadCycle(t *testing.T) {
	conn := newScriptedConn(nil)
	r := New(conn, 16)

	errCh := make(chan error, 1)
	go func() {
		_, err := r.ReadCycle(context.Background())
		errCh <- err
	}()

	testutil.AssertNoError(t, r.Close())
	testutil.AssertNoError(t, r.Close())

	select {
	case err := <-errCh:
		if !errors.Is(err, errors.ErrLocalShutdown) {
			t.Fatalf("expected ErrLocalShutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("read cycle did not return after Close")
	}
	testutil.AssertEqual(t, 1, conn.closes)
}

func TestReadCycleContextCancel(t *testing.T) {
	r := New(newScriptedConn(nil), 16)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadCycle(ctx)
	if !errors.Is(err, errors.ErrLocalShutdown) {
		t.Fatalf("expected ErrLocalShutdown, got %v", err)
	}
}

func TestStartOverTCP(t *testing.T) {
	server := testutil.NewLogServer(t)
	records := testutil.GenerateRecords(200)
	payload := testutil.Stream(records...)

	r, err := Dial(context.Background(), nil, server.Addr(), 7)
	testutil.AssertNoError(t, err)
	defer r.Close()
	testutil.AssertEqual(t, server.Addr(), r.RemoteAddr())

	conn := server.Conn(t)
	go func() {
		for i := 0; i < len(payload); i += 100 {
			conn.Write(payload[i:min(i+100, len(payload))])
		}
		conn.Close()
	}()

	var received bytes.Buffer
	err = r.Start(context.Background(), func(fragment Fragment) {
		if fragment.Reads < 1 {
			t.Errorf("fragment without reads")
		}
		received.Write(fragment.Data)
	})
	if !errors.Is(err, errors.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
	testutil.AssertEqual(t, string(payload), received.String())
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), nil, testutil.UnusedAddr(t), 1024)
	if !errors.Is(err, errors.ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
}
