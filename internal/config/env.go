package config

import "os"

// Env returns true when a given environment variable is set to "yes".
func Env(env string) bool {
	return "yes" == os.Getenv(env)
}

// EnvString returns the value of a LOGPROBE_ prefixed environment variable
// and whether it is set to a non-empty value.
func EnvString(name string) (string, bool) {
	value := os.Getenv(envPrefix + name)
	return value, value != ""
}

const envPrefix = "LOGPROBE_"
