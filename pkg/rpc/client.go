// Package rpc is a minimal JSON-RPC 2.0 client for the lightning daemon's
// unix control socket. It covers only the calls the harness needs: getinfo,
// connect, listpeers and stop.
package rpc

import (
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// DefaultCallTimeout bounds one round trip on the control socket. Network
// calls like connect can take a while when the peer is still coming up.
const DefaultCallTimeout = 30 * time.Second

// Client issues calls against a lightning daemon control socket. Each call
// opens a fresh connection, so a Client is safe for concurrent use and never
// pins the socket open between calls.
type Client struct {
	socketPath string
	timeout    time.Duration

	nextID uint64
}

// NewClient returns a client bound to the given control socket path. The
// socket is not touched until the first call.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultCallTimeout,
	}
}

// SocketPath returns the control socket path this client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// RPCError is a failure reported by the daemon itself, as opposed to a
// transport failure reaching it.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type response struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call performs a single JSON-RPC round trip. A nil params sends an empty
// object; a nil result discards the response payload.
func (c *Client) Call(method string, params, result interface{}) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.socketPath, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if params == nil {
		params = struct{}{}
	}
	req := request{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	}
	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	var resp response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
