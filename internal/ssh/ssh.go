// Package ssh dials the log server through an SSH jump host for servers
// which are only reachable from inside their network.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/mimecast/logprobe/internal/config"
	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/io/dlog"
)

// Dialer opens TCP connections from the jump host.
type Dialer struct {
	server       string
	clientConfig *gossh.ClientConfig
}

// NewDialer prepares a dialer for the configured jump host. Authentication
// uses the private key file when given and the SSH agent otherwise.
func NewDialer(cfg config.SSHConfig) (*Dialer, error) {
	userName, server := ParseServer(cfg.Server)

	var authMethods []gossh.AuthMethod
	if cfg.PrivateKeyFilePath != "" {
		authMethod, err := PrivateKey(expandHome(cfg.PrivateKeyFilePath))
		if err != nil {
			return nil, fmt.Errorf("unable to use private key %s: %w", cfg.PrivateKeyFilePath, err)
		}
		authMethods = append(authMethods, authMethod)
	} else if authMethod, err := Agent(); err != nil {
		dlog.Client.Debug("Not using the SSH agent", err)
	} else {
		authMethods = append(authMethods, authMethod)
	}

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	return &Dialer{
		server: server,
		clientConfig: &gossh.ClientConfig{
			User:            userName,
			Auth:            authMethods,
			HostKeyCallback: hostKeyCallback,
			Timeout:         constants.SSHDialTimeout,
		},
	}, nil
}

// Server returns the jump host address.
func (d *Dialer) Server() string {
	return d.server
}

// DialContext connects to the jump host and opens a connection from there
// to the address. Closing the returned connection also closes the SSH
// session.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	netDialer := net.Dialer{Timeout: constants.SSHDialTimeout}
	conn, err := netDialer.DialContext(ctx, "tcp", d.server)
	if err != nil {
		return nil, fmt.Errorf("unable to reach jump host %s: %w", d.server, err)
	}

	sshConn, chans, reqs, err := gossh.NewClientConn(conn, d.server, d.clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open SSH session to %s: %w", d.server, err)
	}
	client := gossh.NewClient(sshConn, chans, reqs)
	dlog.Client.Debug("Connected to jump host", d.server)

	tunnel, err := client.DialContext(ctx, network, address)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to reach %s from %s: %w", address, d.server, err)
	}
	return &tunnelConn{Conn: tunnel, client: client}, nil
}

type tunnelConn struct {
	net.Conn
	client *gossh.Client
}

func (c *tunnelConn) Close() error {
	err := c.Conn.Close()
	if clientErr := c.client.Close(); err == nil {
		err = clientErr
	}
	return err
}

// ParseServer splits a [user@]host[:port] jump host into the user name and
// the address. The user defaults to the current user and the port to 22.
func ParseServer(s string) (userName, server string) {
	if at := strings.LastIndex(s, "@"); at >= 0 {
		userName, s = s[:at], s[at+1:]
	}
	if userName == "" {
		userName = currentUser()
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		s = net.JoinHostPort(s, strconv.Itoa(config.DefaultSSHPort))
	}
	return userName, s
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func hostKeyCallback(cfg config.SSHConfig) (gossh.HostKeyCallback, error) {
	if cfg.TrustAllHosts {
		dlog.Client.Warn("Trusting all SSH host keys")
		return gossh.InsecureIgnoreHostKey(), nil
	}
	callback, err := knownhosts.New(expandHome(cfg.KnownHostsFile))
	if err != nil {
		return nil, fmt.Errorf("unable to read known hosts: %w", err)
	}
	return callback, nil
}

// Agent used for SSH auth.
func Agent() (gossh.AuthMethod, error) {
	sshAgent, err := net.Dial("unix", os.Getenv("SSH_AUTH_SOCK"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SSH agent: %w", err)
	}
	agentClient := agent.NewClient(sshAgent)
	keys, err := agentClient.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list SSH agent keys: %w", err)
	}
	for i, key := range keys {
		dlog.Client.Debug("Public key", i, key)
	}
	return gossh.PublicKeysCallback(agentClient.Signers), nil
}

// PrivateKey returns the private key as a SSH auth method.
func PrivateKey(keyFile string) (gossh.AuthMethod, error) {
	buffer, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	key, err := gossh.ParsePrivateKey(buffer)
	if err != nil {
		dlog.Client.Debug(keyFile, err)
		return nil, err
	}
	return gossh.PublicKeys(key), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
