package testutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"
)

// MockSSHServer is a jump host accepting any client and forwarding
// direct-tcpip channels to their requested destination.
type MockSSHServer struct {
	t           *testing.T
	listener    net.Listener
	config      *ssh.ServerConfig
	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	connections []ssh.Conn
}

// directTCPIP is the payload of a direct-tcpip channel request (RFC 4254 7.2).
type directTCPIP struct {
	Host       string
	Port       uint32
	OriginHost string
	OriginPort uint32
}

// NewMockSSHServer creates a new mock SSH server.
func NewMockSSHServer(t *testing.T) *MockSSHServer {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(generateTestSigner(t))

	return &MockSSHServer{
		t:      t,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start starts the mock SSH server and returns its address.
func (s *MockSSHServer) Start() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	go s.acceptConnections()
	return listener.Addr().String(), nil
}

// Stop stops the mock SSH server.
func (s *MockSSHServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)

	if s.listener != nil {
		s.listener.Close()
	}
	for _, conn := range s.connections {
		conn.Close()
	}
}

func (s *MockSSHServer) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *MockSSHServer) acceptConnections() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isRunning() {
				return
			}
			s.t.Logf("error accepting connection: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *MockSSHServer) handleConnection(netConn net.Conn) {
	sshConn, chans, reqs, err := ssh.NewServerConn(netConn, s.config)
	if err != nil {
		netConn.Close()
		return
	}

	s.mu.Lock()
	s.connections = append(s.connections, sshConn)
	s.mu.Unlock()

	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "direct-tcpip" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		var target directTCPIP
		if err := ssh.Unmarshal(newChannel.ExtraData(), &target); err != nil {
			newChannel.Reject(ssh.ConnectionFailed, err.Error())
			continue
		}
		upstream, err := net.Dial("tcp", net.JoinHostPort(target.Host, fmt.Sprint(target.Port)))
		if err != nil {
			newChannel.Reject(ssh.ConnectionFailed, err.Error())
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			upstream.Close()
			continue
		}
		go ssh.DiscardRequests(requests)
		go forward(channel, upstream)
	}
}

func forward(channel ssh.Channel, upstream net.Conn) {
	defer channel.Close()
	defer upstream.Close()

	go io.Copy(upstream, channel)
	io.Copy(channel, upstream)
}

func generateTestSigner(t *testing.T) ssh.Signer {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(privateKey)
	if err != nil {
		t.Fatalf("failed to create host key signer: %v", err)
	}
	return signer
}
