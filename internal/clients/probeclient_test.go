package clients

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mimecast/logprobe/internal/clients/handlers"
	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/filter"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/testutil"
)

// syncBuffer is written by the client goroutines while the test polls it.
type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) waitFor(t *testing.T, s string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(b.String(), s) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q in %q", s, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func captureLog(t *testing.T) *syncBuffer {
	t.Helper()

	buf := &syncBuffer{}
	old := dlog.Client
	dlog.Client = dlog.New(dlog.Info, buf)
	t.Cleanup(func() { dlog.Client = old })
	return buf
}

func newTestClient(t *testing.T, endpoint string, include []int) (*ProbeClient, *[]string) {
	t.Helper()

	var lines []string
	handler, err := handlers.NewRecordHandler(handlers.Options{
		Filter:    filter.New(include, nil),
		Formatted: true,
		Sink: handlers.SinkFunc(func(label, text string) {
			lines = append(lines, "["+label+"] "+text)
		}),
	})
	testutil.AssertNoError(t, err)

	c := NewProbeClient(ProbeOptions{
		Endpoint:   endpoint,
		BufferSize: 16,
		Handler:    handler,
	})
	c.stats.pause = 0
	return c, &lines
}

func start(ctx context.Context, c *ProbeClient, statsCh <-chan string) <-chan int {
	statusCh := make(chan int, 1)
	go func() {
		statusCh <- c.Start(ctx, statsCh)
	}()
	return statusCh
}

func waitStatus(t *testing.T, statusCh <-chan int) int {
	t.Helper()

	select {
	case status := <-statusCh:
		return status
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop")
	}
	return -1
}

func TestUnreachableEndpoint(t *testing.T) {
	logs := captureLog(t)
	c, _ := newTestClient(t, testutil.UnusedAddr(t), nil)

	status := c.Start(context.Background(), make(chan string))

	testutil.AssertEqual(t, constants.ExitConnectFailed, status)
	testutil.AssertContains(t, logs.String(), "Connecting to log server...")
	testutil.AssertContains(t, logs.String(), "Failed to create socket")
	testutil.AssertNotContains(t, logs.String(), "Connected successfully.")
}

func TestServerClosesStream(t *testing.T) {
	logs := captureLog(t)
	server := testutil.NewLogServer(t)
	c, lines := newTestClient(t, server.Addr(), nil)

	statusCh := start(context.Background(), c, make(chan string))
	conn := server.Conn(t)
	_, err := conn.Write([]byte("001Hello\x002GoodBye\x00"))
	testutil.AssertNoError(t, err)
	conn.Close()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))
	testutil.AssertEqual(t, 1, len(*lines))
	testutil.AssertEqual(t, "[GAMELOG] Hello", (*lines)[0])
	testutil.AssertContains(t, logs.String(), `Failed to parse tag for line "2GoodBye"`)
	testutil.AssertContains(t, logs.String(), "Connection closed by the log server.")
	testutil.AssertContains(t, logs.String(), "Shutting down...")
}

func TestRecordsAcrossReads(t *testing.T) {
	captureLog(t)
	server := testutil.NewLogServer(t)
	c, lines := newTestClient(t, server.Addr(), []int{1, 3})

	statusCh := start(context.Background(), c, make(chan string))
	conn := server.Conn(t)
	records := testutil.GenerateRecords(20)
	stream := testutil.Stream(records...)
	// Write in pieces smaller than a record so records span read cycles.
	for len(stream) > 0 {
		n := min(7, len(stream))
		_, err := conn.Write(stream[:n])
		testutil.AssertNoError(t, err)
		stream = stream[n:]
	}
	conn.Close()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))

	var expected []string
	for _, record := range records {
		switch record[:3] {
		case "001":
			expected = append(expected, "[GAMELOG] "+record[3:])
		case "003":
			expected = append(expected, "[CONSOLE] "+record[3:])
		}
	}
	testutil.AssertEqual(t, strings.Join(expected, "\n"), strings.Join(*lines, "\n"))
}

func TestInterrupt(t *testing.T) {
	logs := captureLog(t)
	server := testutil.NewLogServer(t)
	c, _ := newTestClient(t, server.Addr(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	statusCh := start(ctx, c, make(chan string))
	server.Conn(t)
	logs.waitFor(t, "Connected successfully.")

	// The read cycle is blocked waiting for data.
	cancel()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))
	testutil.AssertContains(t, logs.String(), "Socket has been shut down.")
	testutil.AssertNotContains(t, logs.String(), "Exception while reading")
	testutil.AssertEqual(t, 1, strings.Count(logs.String(), "Socket has been shut down."))
}

func TestUnterminatedRecordOnClose(t *testing.T) {
	captureLog(t)
	server := testutil.NewLogServer(t)
	c, lines := newTestClient(t, server.Addr(), nil)

	statusCh := start(context.Background(), c, make(chan string))
	conn := server.Conn(t)
	_, err := conn.Write([]byte("001Hello\x00003tail"))
	testutil.AssertNoError(t, err)
	conn.Close()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))
	testutil.AssertEqual(t, "[GAMELOG] Hello\n[CONSOLE] tail", strings.Join(*lines, "\n"))
}

func TestUnterminatedRecordOnInterrupt(t *testing.T) {
	logs := captureLog(t)
	server := testutil.NewLogServer(t)
	c, lines := newTestClient(t, server.Addr(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	statusCh := start(ctx, c, make(chan string))
	conn := server.Conn(t)
	_, err := conn.Write([]byte("001Hello\x00003partial"))
	testutil.AssertNoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for c.handler.Displayed() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the first record")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))
	testutil.AssertEqual(t, "[GAMELOG] Hello", strings.Join(*lines, "\n"))
	testutil.AssertEqual(t, uint64(1), c.handler.Displayed())
	testutil.AssertNotContains(t, logs.String(), "Connection closed by the log server.")
}

func TestStatsRequest(t *testing.T) {
	logs := captureLog(t)
	server := testutil.NewLogServer(t)
	c, _ := newTestClient(t, server.Addr(), nil)

	statsCh := make(chan string)
	statusCh := start(context.Background(), c, statsCh)
	conn := server.Conn(t)
	_, err := conn.Write([]byte("000booted\x00"))
	testutil.AssertNoError(t, err)
	logs.waitFor(t, "Connected successfully.")

	statsCh <- "Stats requested"
	logs.waitFor(t, "Stream stats:")
	conn.Close()

	testutil.AssertEqual(t, constants.ExitOK, waitStatus(t, statusCh))
	testutil.AssertContains(t, logs.String(), " Stats requested")
	testutil.AssertContains(t, logs.String(), "endpoint="+server.Addr())
}
