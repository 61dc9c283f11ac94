package config

import (
	"testing"

	"github.com/mimecast/logprobe/internal/testutil"
)

func TestEnv(t *testing.T) {
	t.Run("env var set to yes", func(t *testing.T) {
		t.Setenv("TEST_ENV_VAR", "yes")
		testutil.AssertEqual(t, true, Env("TEST_ENV_VAR"))
	})

	t.Run("env var set to other value", func(t *testing.T) {
		t.Setenv("TEST_ENV_VAR", "no")
		testutil.AssertEqual(t, false, Env("TEST_ENV_VAR"))
	})

	t.Run("empty env var", func(t *testing.T) {
		t.Setenv("TEST_ENV_VAR", "")
		testutil.AssertEqual(t, false, Env("TEST_ENV_VAR"))
	})
}

func TestEnvString(t *testing.T) {
	t.Setenv("LOGPROBE_LOGLEVEL", "debug")
	value, ok := EnvString("LOGLEVEL")
	testutil.AssertEqual(t, true, ok)
	testutil.AssertEqual(t, "debug", value)

	t.Setenv("LOGPROBE_ENCODING", "")
	_, ok = EnvString("ENCODING")
	testutil.AssertEqual(t, false, ok)
}
