package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

// TempFile creates a temporary file with the given content and returns its path.
// The file is automatically cleaned up when the test ends.
func TempFile(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp(t.TempDir(), "logprobe-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		tmpfile.Close()
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpfile.Name()
}

// CaptureOutput captures stdout during the execution of a function.
func CaptureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	outCh := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outCh <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = old

	return <-outCh
}

// LogServer is a single connection TCP server writing scripted payloads to
// the first client that connects.
type LogServer struct {
	listener net.Listener
	accepted chan net.Conn
}

// NewLogServer listens on a random loopback port. The listener is closed when
// the test ends.
func NewLogServer(t *testing.T) *LogServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	s := &LogServer{
		listener: listener,
		accepted: make(chan net.Conn, 1),
	}
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			close(s.accepted)
			return
		}
		s.accepted <- conn
	}()
	t.Cleanup(func() { listener.Close() })
	return s
}

// Addr returns the address the server listens on.
func (s *LogServer) Addr() string {
	return s.listener.Addr().String()
}

// Conn waits for the client connection.
func (s *LogServer) Conn(t *testing.T) net.Conn {
	t.Helper()

	select {
	case conn, ok := <-s.accepted:
		if !ok {
			t.Fatal("listener closed before a client connected")
		}
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a client connection")
	}
	return nil
}

// UnusedAddr returns a loopback address nothing listens on.
func UnusedAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()
	return addr
}

// AssertError checks that an error is not nil and contains the expected substring.
func AssertError(t *testing.T, err error, contains string) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error containing %q, got nil", contains)
		return
	}
	if !strings.Contains(err.Error(), contains) {
		t.Errorf("expected error containing %q, got %q", contains, err.Error())
	}
}

// AssertNoError checks that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

// AssertEqual checks that two values are equal.
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	if expected != actual {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// AssertContains checks that a string contains a substring.
func AssertContains(t *testing.T, s, substr string) {
	t.Helper()

	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

// AssertNotContains checks that a string does not contain a substring.
func AssertNotContains(t *testing.T, s, substr string) {
	t.Helper()

	if strings.Contains(s, substr) {
		t.Errorf("expected %q not to contain %q", s, substr)
	}
}

// Stream builds a wire stream out of tagged payloads, each one terminated
// by the null delimiter.
func Stream(records ...string) []byte {
	var buf bytes.Buffer
	for _, record := range records {
		buf.WriteString(record)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// GenerateRecords generates count records cycling through the well-known tags.
func GenerateRecords(count int) []string {
	messages := []string{
		"Server started successfully",
		"Player joined the game",
		"Frame rendered",
		"Console command executed",
	}

	records := make([]string, count)
	for i := 0; i < count; i++ {
		records[i] = fmt.Sprintf("%03d%s #%d", i%5, messages[i%len(messages)], i)
	}
	return records
}
