package config

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/mimecast/logprobe/internal/errors"
)

// Endpoint is the address of the log server.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

// ParseEndpoint parses an endpoint in the ipv4address:port form.
func ParseEndpoint(s string) (Endpoint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Endpoint{}, errors.Wrapf(errors.ErrMissingPort, "parsing endpoint %q", s)
	}

	addr, err := netip.ParseAddr(parts[0])
	if err != nil || !addr.Is4() {
		return Endpoint{}, errors.Wrapf(errors.ErrInvalidAddress, "parsing endpoint %q", s)
	}

	// The port may carry a plus sign and surrounding ASCII whitespace.
	digits := strings.TrimPrefix(strings.Trim(parts[1], " \t\n\v\f\r"), "+")
	port, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return Endpoint{}, errors.Wrapf(errors.ErrInvalidPort, "parsing endpoint %q", s)
	}

	return Endpoint{Addr: addr, Port: uint16(port)}, nil
}

// String returns the endpoint in the host:port form accepted by net.Dial.
func (e Endpoint) String() string {
	return netip.AddrPortFrom(e.Addr, e.Port).String()
}
