// Package bitcoind describes the already-running bitcoin backend a lightning
// node synchronizes against. The backend itself is managed elsewhere; this
// package only models its RPC coordinates and cookie-file credentials.
package bitcoind

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// ErrMissingAuth signals that the backend's cookie file is absent or does not
// carry a user:password pair. A launch failing with this error never spawned
// a daemon process.
var ErrMissingAuth = errors.New("bitcoind cookie credentials missing or malformed")

// ConnInfo carries everything a lightning node needs to reach a running
// bitcoind: the RPC endpoint and the path of its authentication cookie.
type ConnInfo struct {
	RPCHost    string
	RPCPort    int
	CookieFile string
}

// Addr returns the backend RPC endpoint as host:port.
func (c *ConnInfo) Addr() string {
	return net.JoinHostPort(c.RPCHost, strconv.Itoa(c.RPCPort))
}

// Credentials reads the cookie file and splits it into user and password.
// bitcoind writes the cookie as a single `user:password` line; anything less
// than two colon-separated fields is malformed.
func (c *ConnInfo) Credentials() (user, pass string, err error) {
	raw, err := os.ReadFile(c.CookieFile)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrMissingAuth, err)
	}

	parts := strings.SplitN(strings.TrimSpace(string(raw)), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("%w: cookie file %s has no user:password pair", ErrMissingAuth, c.CookieFile)
	}
	return parts[0], parts[1], nil
}
