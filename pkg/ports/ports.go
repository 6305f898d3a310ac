// Package ports hands out ephemeral TCP ports for nodes that need a p2p
// listen address before the daemon has been started.
package ports

import (
	"fmt"
	"net"
)

// Allocate returns a TCP port that was free at the time of the call.
//
// It binds to 127.0.0.1:0, lets the kernel pick the port, reads it back and
// closes the listener. Nothing is reserved: between the close and the moment
// the daemon binds the same port, another process may grab it. That race is
// inherent to OS-assigned ports and is accepted here; callers that hit it
// will see the daemon fail to come up and the launch fail on readiness.
func Allocate() (int, error) {
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to bind ephemeral port: %w", err)
	}
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address type %T", l.Addr())
	}
	return addr.Port, nil
}
