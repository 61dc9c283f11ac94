// Package config provides the configuration of the LogProbe client. It is
// assembled from several sources with the following precedence (highest to
// lowest):
//
//  1. Command-line arguments
//  2. Environment variables (LOGPROBE_ prefix)
//  3. YAML configuration file (--cfg or LOGPROBE_CONFIG)
//  4. Default values
package config

import (
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/errors"
)

const (
	// DefaultLogLevel specifies the default log level.
	DefaultLogLevel string = "info"
	// DefaultEncoding is the default single byte code page of the stream.
	DefaultEncoding string = "cp1252"
	// DefaultSSHPort is the port of the SSH jump host unless given.
	DefaultSSHPort int = 22
)

// Client holds the LogProbe client configuration once Setup has run.
var Client *ClientConfig

// ClientConfig is the client configuration.
type ClientConfig struct {
	// Endpoint of the log server, only set from the command line.
	Endpoint Endpoint `yaml:"-"`
	// BufferSize is the size of the receive buffer in bytes.
	BufferSize int `yaml:"bufsize"`
	// Format enables mnemonic tag labels.
	Format bool `yaml:"format"`
	// Include lists the tags to display. Takes precedence over Exclude.
	Include []int `yaml:"include"`
	// Exclude lists the tags not to display.
	Exclude []int `yaml:"exclude"`
	// TermColorsEnable enables ANSI colors on terminals.
	TermColorsEnable bool `yaml:"colors"`
	// LogLevel is the console log level.
	LogLevel string `yaml:"logLevel"`
	// Encoding is the single byte code page of the stream.
	Encoding string `yaml:"encoding"`
	// LegacyFraming disables carrying unterminated records over to the next
	// read cycle.
	LegacyFraming bool `yaml:"legacyFraming"`
	// MetricsAddr is the listen address of the metrics server, if any.
	MetricsAddr string `yaml:"metrics"`
	// SSH configures the optional jump host.
	SSH SSHConfig `yaml:"ssh"`
}

// SSHConfig configures connecting through an SSH jump host.
type SSHConfig struct {
	// Server is the jump host in the [user@]host[:port] form. Empty means
	// the log server is dialed directly.
	Server string `yaml:"server"`
	// PrivateKeyFilePath is used instead of the SSH agent when set.
	PrivateKeyFilePath string `yaml:"privateKey"`
	// KnownHostsFile verifies the jump host key.
	KnownHostsFile string `yaml:"knownHosts"`
	// TrustAllHosts disables host key verification.
	TrustAllHosts bool `yaml:"trustAllHosts"`
}

func newDefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BufferSize:       constants.DefaultReceiveBufferSize,
		Format:           true,
		TermColorsEnable: true,
		LogLevel:         DefaultLogLevel,
		Encoding:         DefaultEncoding,
		SSH: SSHConfig{
			KnownHostsFile: "~/.ssh/known_hosts",
		},
	}
}

// Setup builds the client configuration and makes it available via Client.
// Environment problems are reported through warn and don't stop the setup.
func Setup(args *Args, warn func(string)) error {
	c, err := load(args, warn)
	if err != nil {
		return err
	}
	Client = c
	return nil
}

func load(args *Args, warn func(string)) (*ClientConfig, error) {
	c := newDefaultClientConfig()

	configFile := args.ConfigFile
	if configFile == "" {
		configFile, _ = EnvString("CONFIG")
	}
	if configFile != "" {
		if err := c.parseFile(configFile); err != nil {
			return nil, err
		}
	}
	c.applyEnv(warn)
	c.applyArgs(args)

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ClientConfig) parseFile(configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "reading %s: %v", configFile, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(errors.ErrInvalidConfig, "parsing %s: %v", configFile, err)
	}
	return nil
}

func (c *ClientConfig) applyEnv(warn func(string)) {
	if value, ok := EnvString("BUFSIZE"); ok {
		size, err := strconv.Atoi(value)
		if err != nil || size < constants.MinReceiveBufferSize {
			warn("Unable to parse value of LOGPROBE_BUFSIZE.")
		} else {
			c.BufferSize = size
		}
	}
	if value, ok := EnvString("LOGLEVEL"); ok {
		c.LogLevel = value
	}
	if value, ok := EnvString("ENCODING"); ok {
		c.Encoding = value
	}
	if value, ok := EnvString("SSH"); ok {
		c.SSH.Server = value
	}
	if Env(envPrefix+"NOFORMAT") {
		c.Format = false
	}
	if Env(envPrefix+"NOCOLOR") || os.Getenv("NO_COLOR") != "" {
		c.TermColorsEnable = false
	}
}

func (c *ClientConfig) applyArgs(args *Args) {
	c.Endpoint = args.Endpoint

	if args.Changed("bufsize") {
		c.BufferSize = args.BufferSize
	}
	if args.Changed("noformat") {
		c.Format = !args.NoFormat
	}
	if args.Changed("noColor") {
		c.TermColorsEnable = !args.NoColor
	}
	if args.Changed("logLevel") {
		c.LogLevel = args.LogLevel
	}
	if args.Changed("encoding") {
		c.Encoding = args.Encoding
	}
	if args.Changed("legacyFraming") {
		c.LegacyFraming = args.LegacyFraming
	}
	if args.Changed("metrics") {
		c.MetricsAddr = args.MetricsAddr
	}
	if args.Changed("ssh") {
		c.SSH.Server = args.SSHServer
	}
	if args.Changed("sshKey") {
		c.SSH.PrivateKeyFilePath = args.SSHPrivateKeyFilePath
	}
	if args.Changed("trustAllHosts") {
		c.SSH.TrustAllHosts = args.TrustAllHosts
	}
	c.Include = append(c.Include, args.Include...)
	c.Exclude = append(c.Exclude, args.Exclude...)
}

func (c *ClientConfig) validate() error {
	errs := errors.NewMultiError()
	if c.BufferSize < constants.MinReceiveBufferSize {
		errs.Add(errors.Wrapf(errors.ErrInvalidConfig, "buffer size %d", c.BufferSize))
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			errs.Add(errors.Wrapf(errors.ErrInvalidConfig, "metrics address: %v", err))
		}
	}
	if c.SSH.PrivateKeyFilePath != "" && c.SSH.Server == "" {
		errs.Add(errors.Wrap(errors.ErrInvalidConfig, "SSH private key given without a jump host"))
	}
	return errs.ErrorOrNil()
}
