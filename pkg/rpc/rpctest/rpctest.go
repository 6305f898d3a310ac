// Package rpctest runs a fake lightning daemon control socket for tests. It
// speaks just enough JSON-RPC to stand in for the real daemon: one request
// per connection, dispatched to per-method handlers registered by the test.
package rpctest

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/RCasatta/lightningd/pkg/rpc"
)

// Handler computes the result for one method invocation. Returning a non-nil
// *rpc.RPCError produces a protocol-level error response.
type Handler func(params json.RawMessage) (interface{}, *rpc.RPCError)

// Daemon is a fake control-socket server.
type Daemon struct {
	ln net.Listener
	wg sync.WaitGroup

	mu       sync.Mutex
	handlers map[string]Handler

	closeOnce sync.Once
}

// Serve starts a fake daemon listening on the given unix socket path.
func Serve(socketPath string) (*Daemon, error) {
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		ln:       ln,
		handlers: make(map[string]Handler),
	}
	d.wg.Add(1)
	go d.acceptLoop()
	return d, nil
}

// Handle registers the handler for a method, replacing any previous one.
func (d *Daemon) Handle(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = h
}

// Close stops the listener and waits for in-flight connections to finish.
// Safe to call more than once.
func (d *Daemon) Close() {
	d.closeOnce.Do(func() {
		d.ln.Close()
		d.wg.Wait()
	})
}

func (d *Daemon) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		d.wg.Add(1)
		go d.serveConn(conn)
	}
}

type request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *rpc.RPCError `json:"error,omitempty"`
}

func (d *Daemon) serveConn(conn net.Conn) {
	defer d.wg.Done()
	defer conn.Close()

	var req request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}

	d.mu.Lock()
	h, ok := d.handlers[req.Method]
	d.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &rpc.RPCError{Code: -32601, Message: "unknown method " + req.Method}
	} else {
		resp.Result, resp.Error = h(req.Params)
	}
	_ = json.NewEncoder(conn).Encode(&resp)
}
