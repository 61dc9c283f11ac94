package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/errors"
)

// Usage is printed whenever the endpoint is missing or malformed.
const Usage = "Usage: [IP:Port] <--noformat> <--bufsize XXXX> <--includeXXX>... <--excludeXXX>..."

const (
	includePrefix = "--include"
	excludePrefix = "--exclude"
)

// Args holds the command line arguments. Only switches given on the command
// line override the configuration file and the environment.
type Args struct {
	Endpoint              Endpoint
	NoFormat              bool
	BufferSize            int
	Include               []int
	Exclude               []int
	NoColor               bool
	LogLevel              string
	ConfigFile            string
	Encoding              string
	LegacyFraming         bool
	SSHServer             string
	SSHPrivateKeyFilePath string
	TrustAllHosts         bool
	MetricsAddr           string
	CPUProfile            bool
	MemProfile            bool
	ProfileDir            string
	DisplayVersion        bool

	// changed holds the names of the switches given on the command line.
	changed map[string]bool
}

// Changed returns true when the named switch was given on the command line.
func (a *Args) Changed(name string) bool {
	return a.changed[name]
}

func (a *Args) String() string {
	return fmt.Sprintf("Args(Endpoint:%s,NoFormat:%t,BufferSize:%d,Include:%v,"+
		"Exclude:%v,NoColor:%t,LogLevel:%s,ConfigFile:%s,Encoding:%s,"+
		"LegacyFraming:%t,SSHServer:%s,MetricsAddr:%s)",
		a.Endpoint, a.NoFormat, a.BufferSize, a.Include, a.Exclude, a.NoColor,
		a.LogLevel, a.ConfigFile, a.Encoding, a.LegacyFraming, a.SSHServer,
		a.MetricsAddr)
}

// ParseArgs parses the command line without the program name. The first
// argument is the mandatory endpoint. Malformed or unknown switches are
// reported through warn and skipped. The returned error classifies the
// endpoint validation failure, see ExitCode.
func ParseArgs(arguments []string, warn func(string)) (*Args, error) {
	args := &Args{
		BufferSize: constants.DefaultReceiveBufferSize,
		changed:    make(map[string]bool),
	}

	if len(arguments) > 0 && arguments[0] == "--version" {
		args.DisplayVersion = true
		return args, nil
	}
	if len(arguments) == 0 {
		return nil, errors.ErrNoArguments
	}

	endpoint, err := ParseEndpoint(arguments[0])
	if err != nil {
		return nil, err
	}
	args.Endpoint = endpoint

	bufSize := &bufSizeValue{size: &args.BufferSize, warn: warn}
	flagSet := pflag.NewFlagSet("logprobe", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&args.NoFormat, "noformat", false, "Print plain tag numbers instead of labels")
	flagSet.Var(bufSize, "bufsize", "Receive buffer size in bytes")
	flagSet.BoolVar(&args.NoColor, "noColor", false, "Disable ANSI terminal colors")
	flagSet.StringVar(&args.LogLevel, "logLevel", "", "Log level")
	flagSet.StringVar(&args.ConfigFile, "cfg", "", "Config file path")
	flagSet.StringVar(&args.Encoding, "encoding", "", "Single byte code page of the stream (cp1252, latin1)")
	flagSet.BoolVar(&args.LegacyFraming, "legacyFraming", false, "Don't carry unterminated records over to the next read")
	flagSet.StringVar(&args.SSHServer, "ssh", "", "Connect through this SSH jump host (user@host:port)")
	flagSet.StringVar(&args.SSHPrivateKeyFilePath, "sshKey", "", "Private key for the SSH jump host")
	flagSet.BoolVar(&args.TrustAllHosts, "trustAllHosts", false, "Trust unknown SSH host keys")
	flagSet.StringVar(&args.MetricsAddr, "metrics", "", "Serve Prometheus metrics and pprof on this address")
	flagSet.BoolVar(&args.CPUProfile, "cpuprofile", false, "Write a CPU profile")
	flagSet.BoolVar(&args.MemProfile, "memprofile", false, "Write a memory profile on exit")
	flagSet.StringVar(&args.ProfileDir, "profiledir", "profiles", "Directory to store profiles")
	flagSet.BoolVar(&args.DisplayVersion, "version", false, "Display version")

	args.parseSwitches(flagSet, arguments[1:], warn)
	flagSet.Visit(func(f *pflag.Flag) {
		args.changed[f.Name] = true
	})
	args.changed["bufsize"] = bufSize.parsed
	return args, nil
}

// parseSwitches handles the --includeNNN and --excludeNNN switches itself
// and sets every other known switch on the flag set one at a time. A switch
// which is unknown, lacks its value or carries a malformed value is reported
// through warn and skipped, keeping the previous value.
func (a *Args) parseSwitches(flagSet *pflag.FlagSet, arguments []string,
	warn func(string)) {

	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]

		if tag, ok := tagSwitch(arg, includePrefix); ok {
			a.Include = append(a.Include, tag)
			a.changed["include"] = true
			continue
		}
		if tag, ok := tagSwitch(arg, excludePrefix); ok {
			a.Exclude = append(a.Exclude, tag)
			a.changed["exclude"] = true
			continue
		}
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			warn(fmt.Sprintf("Unrecognized switch: %s", arg))
			continue
		}

		name, value, hasValue := strings.Cut(arg[2:], "=")
		f := flagSet.Lookup(name)
		if f == nil {
			warn(fmt.Sprintf("Unrecognized switch: %s", arg))
			continue
		}
		switch {
		case f.Value.Type() == "bool" && !hasValue:
			value = "true"
		case f.Value.Type() == "bool":
			if _, err := strconv.ParseBool(value); err != nil {
				warn(fmt.Sprintf("Unrecognized switch: %s", arg))
				continue
			}
		case !hasValue && i+1 >= len(arguments):
			warn(fmt.Sprintf("Unrecognized switch: %s", arg))
			continue
		case !hasValue:
			i++
			value = arguments[i]
		}
		if err := flagSet.Set(name, value); err != nil {
			warn(fmt.Sprintf("Unable to parse value for switch --%s.", name))
		}
	}
}

// bufSizeValue keeps the previous size when a --bufsize value can't be
// parsed instead of failing the whole command line.
type bufSizeValue struct {
	size   *int
	warn   func(string)
	parsed bool
}

func (v *bufSizeValue) String() string {
	if v.size == nil {
		return ""
	}
	return strconv.Itoa(*v.size)
}

func (v *bufSizeValue) Set(value string) error {
	size, err := strconv.Atoi(value)
	if err != nil || size < constants.MinReceiveBufferSize {
		v.warn("Unable to parse value for switch --bufsize.")
		return nil
	}
	*v.size = size
	v.parsed = true
	return nil
}

func (v *bufSizeValue) Type() string {
	return "int"
}

func tagSwitch(arg, prefix string) (int, bool) {
	if !strings.HasPrefix(arg, prefix) {
		return 0, false
	}
	tag, err := strconv.Atoi(arg[len(prefix):])
	if err != nil {
		return 0, false
	}
	return tag, true
}

// ExitCode maps an argument or startup error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, errors.ErrNoArguments):
		return constants.ExitNoArguments
	case errors.Is(err, errors.ErrMissingPort):
		return constants.ExitMissingPort
	case errors.Is(err, errors.ErrInvalidAddress):
		return constants.ExitInvalidAddress
	case errors.Is(err, errors.ErrInvalidPort):
		return constants.ExitInvalidPort
	case errors.Is(err, errors.ErrConnectionFailed):
		return constants.ExitConnectFailed
	default:
		return constants.ExitConfigError
	}
}
