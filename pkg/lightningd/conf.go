package lightningd

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ListenAnnounce selects how a node participates in the p2p network. The zero
// value is NoP2P.
type ListenAnnounce int

const (
	// NoP2P: the node neither listens for nor announces a p2p address.
	NoP2P ListenAnnounce = iota
	// Listen: the node binds a p2p port on loopback.
	Listen
	// ListenAndAnnounce: the node binds a p2p port and announces it to the
	// network, so peers can discover it through gossip.
	ListenAndAnnounce
)

func (l ListenAnnounce) String() string {
	switch l {
	case NoP2P:
		return "no-p2p"
	case Listen:
		return "listen"
	case ListenAndAnnounce:
		return "listen-announce"
	default:
		return fmt.Sprintf("ListenAnnounce(%d)", int(l))
	}
}

// PeerTarget identifies a peer to dial: its node id, plus an optional
// host:port where it can be reached. The address may be empty when the peer
// is discoverable some other way.
type PeerTarget struct {
	ID   string `validate:"required"`
	Addr string `validate:"omitempty,hostname_port"`
}

// HostPort splits the target address. Both return values are zero when no
// address is set.
func (p *PeerTarget) HostPort() (string, int, error) {
	if p.Addr == "" {
		return "", 0, nil
	}
	host, port, err := net.SplitHostPort(p.Addr)
	if err != nil {
		return "", 0, fmt.Errorf("bad peer address %q: %w", p.Addr, err)
	}
	var n int
	if _, err := fmt.Sscanf(port, "%d", &n); err != nil {
		return "", 0, fmt.Errorf("bad peer port %q: %w", port, err)
	}
	return host, n, nil
}

// P2P carries the p2p settings of one launch: whether to open a listening
// port, and an optional peer to connect to once the node is up.
type P2P struct {
	// Connect, if set, is dialed right after the node reports ready. A
	// failure to connect fails the whole launch.
	Connect *PeerTarget

	ListenAnnounce ListenAnnounce
}

// Conf is the declarative launch configuration of one node. It is read, never
// written, by the launch sequence; the zero value is a usable default.
type Conf struct {
	// Args are extra lightningd command-line arguments, one per element and
	// containing no spaces, e.g. []string{"--rgb=AABBCC"}. They are appended
	// last so they can override the defaults. --lightning-dir and --network
	// are owned by the harness and must not appear here.
	Args []string

	// ViewStdout lets the daemon's output through to the test's terminal
	// instead of discarding it.
	ViewStdout bool

	// P2P settings; zero value means an isolated node.
	P2P P2P

	// Network is the chain the node runs on. Empty means regtest.
	Network string `validate:"omitempty,alphanum"`
}

var confValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateArgs, &Conf{})
	return v
}()

// validateArgs rejects extra arguments carrying embedded whitespace; each
// list element must be exactly one argv entry.
func validateArgs(sl validator.StructLevel) {
	c := sl.Current().Interface().(Conf)
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t\n") {
			sl.ReportError(c.Args, "Args", "Args", "noargwhitespace", a)
			return
		}
	}
}

// validate checks a Conf before any resource is provisioned for it.
func (c *Conf) validate() error {
	if err := confValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid conf: %w", err)
	}
	if c.P2P.Connect != nil {
		if err := confValidator.Struct(c.P2P.Connect); err != nil {
			return fmt.Errorf("invalid connect target: %w", err)
		}
	}
	return nil
}

// network returns the effective network name.
func (c *Conf) network() string {
	if c.Network == "" {
		return "regtest"
	}
	return c.Network
}
