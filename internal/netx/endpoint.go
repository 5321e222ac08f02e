// Package netx holds helpers for server endpoints. It never dials.
package netx

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var ErrInvalidEndpoint = errors.New("invalid endpoint")

// ValidateEndpoint checks that address is an unbracketed IP literal or an
// RFC 1123 host name, and port a TCP port number.
func ValidateEndpoint(address, port string) error {
	if net.ParseIP(address) == nil && !validHostname(address) {
		return fmt.Errorf("%w: address %q is not an IP or host name", ErrInvalidEndpoint, address)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: port %q out of range", ErrInvalidEndpoint, port)
	}
	return nil
}

// validHostname: dot-separated labels of 1-63 letters, digits or hyphens,
// not starting or ending with a hyphen, 253 characters at most.
func validHostname(name string) bool {
	if name == "" || len(name) > 253 {
		return false
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return false
			}
		}
	}
	return true
}

// HostPort formats address and port for display, bracketing IPv6 literals.
func HostPort(address, port string) string {
	return net.JoinHostPort(address, port)
}
