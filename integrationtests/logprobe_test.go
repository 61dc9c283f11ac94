package integrationtests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mimecast/logprobe/internal/config"
	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/testutil"
)

func TestLogProbeExitCodes(t *testing.T) {
	if !config.Env("LOGPROBE_INTEGRATION_TEST_RUN_MODE") {
		t.Log("Skipping")
		return
	}

	tests := []struct {
		name     string
		args     []string
		expected int
	}{
		{"NoArguments", nil, constants.ExitNoArguments},
		{"MissingPort", []string{"127.0.0.1"}, constants.ExitMissingPort},
		{"InvalidAddress", []string{"300.0.0.1:9999"}, constants.ExitInvalidAddress},
		{"InvalidPort", []string{"127.0.0.1:99999"}, constants.ExitInvalidPort},
		{"Unreachable", []string{testutil.UnusedAddr(t)}, constants.ExitConnectFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			stdoutFile := filepath.Join(t.TempDir(), "logprobe.stdout.tmp")
			exitCode, err := runCommand(ctx, t, stdoutFile, logprobeBinary, tt.args...)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.expected, exitCode)
		})
	}
}

func TestLogProbeStream(t *testing.T) {
	if !config.Env("LOGPROBE_INTEGRATION_TEST_RUN_MODE") {
		t.Log("Skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := testutil.NewLogServer(t)
	go func() {
		conn := server.Conn(t)
		conn.Write(testutil.Stream("000boot", "001first", "002frame", "003say hello"))
		conn.Write([]byte("2GoodBye\x00"))
		conn.Close()
	}()

	stdoutFile := filepath.Join(t.TempDir(), "logprobe.stdout.tmp")
	exitCode, err := runCommand(ctx, t, stdoutFile, logprobeBinary,
		server.Addr(), "--noColor", "--exclude002", "--bufsize", "4")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, constants.ExitOK, exitCode)

	for _, expected := range []string{
		"[LOG] boot",
		"[GAMELOG] first",
		"[CONSOLE] say hello",
		`Failed to parse tag for line "2GoodBye"`,
		"Socket has been shut down.",
	} {
		if err := fileContainsStr(t, stdoutFile, expected); err != nil {
			t.Error(err)
		}
	}
	if err := fileNotContainsStr(t, stdoutFile, "RENLOG"); err != nil {
		t.Error(err)
	}
}
