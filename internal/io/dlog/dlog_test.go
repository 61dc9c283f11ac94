package dlog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mimecast/logprobe/internal/testutil"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Info, &buf)

	logger.Error("Exception while reading", errors.New("reset by peer"))
	logger.Warn("Unrecognized switch: --foo")
	logger.Info("Connected successfully.")
	logger.Verbose("not shown")
	logger.Debug("not shown")
	logger.Trace("not shown")

	out := buf.String()
	testutil.AssertContains(t, out, "Exception while reading|reset by peer\n")
	testutil.AssertContains(t, out, "Unrecognized switch: --foo\n")
	testutil.AssertContains(t, out, "Connected successfully.\n")
	testutil.AssertNotContains(t, out, "not shown")
}

func TestPrefixedLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Trace, &buf)

	logger.Debug("drain cycle", 3, "chunks")
	logger.Trace("waiting")

	testutil.AssertEqual(t, "DEBUG|drain cycle|3|chunks\nTRACE|waiting\n", buf.String())
}

func TestRaw(t *testing.T) {
	var buf bytes.Buffer
	New(Error, &buf).Raw("[GAMELOG] Hello")
	New(None, &buf).Raw("[LOG] suppressed")

	testutil.AssertEqual(t, "[GAMELOG] Hello\n", buf.String())
}

func TestPauseResume(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Info, &buf)

	logger.Pause()
	logger.Raw("[LOG] held")
	logger.Direct("stats")
	testutil.AssertEqual(t, "stats\n", buf.String())

	logger.Resume()
	testutil.AssertEqual(t, "stats\n[LOG] held\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"none", "fatal", "error", "warn", "info", "verbose", "debug", "trace", "all"} {
		l, err := ParseLevel(name)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, name, l.String())
	}

	l, err := ParseLevel("DEBUG")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, Debug, l)

	_, err = ParseLevel("chatty")
	testutil.AssertError(t, err, "unknown log level")
}

func TestSetup(t *testing.T) {
	old := Client
	defer func() { Client = old }()

	var buf bytes.Buffer
	testutil.AssertNoError(t, Setup("warn", &buf))
	Client.Info("hidden")
	Client.Warn("shown")
	testutil.AssertEqual(t, "shown\n", buf.String())

	testutil.AssertError(t, Setup("loud", &buf), "unknown log level")
}
