// Package lightningd launches throwaway lightning daemon instances against a
// running bitcoind, for use in tests. A launch provisions a private working
// directory, builds the command line, spawns the daemon, waits until it is
// synchronized and answering RPC, and optionally wires it to a peer. The
// returned Node owns everything it touched and tears it all down exactly
// once.
package lightningd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"

	"github.com/RCasatta/lightningd/pkg/bitcoind"
	"github.com/RCasatta/lightningd/pkg/logging"
	"github.com/RCasatta/lightningd/pkg/rpc"
	"github.com/RCasatta/lightningd/pkg/workspace"
)

// socketFileName is the control socket the daemon creates under
// <workspace>/<network>/ once its RPC endpoint is bindable.
const socketFileName = "lightning-rpc"

// Readiness poll budget, per phase. Overridden only from tests.
var (
	pollInterval      = 500 * time.Millisecond
	pollAttempts uint = 60
)

// Node is one live daemon instance: the child process, its RPC client, its
// workspace, and (when listening) its own dialable identity.
type Node struct {
	// Client is bound to the node's control socket and usable as soon as the
	// launch returns.
	Client *rpc.Client

	process *exec.Cmd
	workdir *workspace.Workspace
	self    *PeerTarget

	shutdownOnce sync.Once
}

// Start launches a node with the default Conf.
func Start(exe string, backend *bitcoind.ConnInfo) (*Node, error) {
	return StartWithConf(exe, backend, &Conf{})
}

// StartWithConf runs the full launch sequence: workspace, launch plan, spawn,
// readiness, topology bootstrap. On any failure the partially acquired
// resources (workspace, spawned process) are released before returning.
func StartWithConf(exe string, backend *bitcoind.ConnInfo, conf *Conf) (*Node, error) {
	if conf == nil {
		conf = &Conf{}
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}

	ws, err := workspace.New("lightningd")
	if err != nil {
		return nil, err
	}

	plan, err := buildPlan(ws, backend, conf)
	if err != nil {
		_ = ws.Remove()
		return nil, err
	}

	process, err := spawn(exe, plan, conf.ViewStdout)
	if err != nil {
		_ = ws.Remove()
		return nil, err
	}

	// from here on the node owns the process and the workspace; Shutdown
	// covers every error path.
	n := &Node{process: process, workdir: ws}

	client, info, err := awaitReady(ws, conf.network())
	if err != nil {
		n.Shutdown()
		return nil, err
	}
	n.Client = client

	if err := n.bootstrap(conf, info.ID, plan.BindAddr); err != nil {
		n.Shutdown()
		return nil, err
	}

	logging.S().Infow("lightningd ready", "id", info.ID, "workdir", ws.Path(), "bind", plan.BindAddr)
	return n, nil
}

// spawn starts the daemon process. Stdout and stderr are passed through to
// the parent terminal when viewStdout is set, and discarded otherwise.
func spawn(exe string, plan *LaunchPlan, viewStdout bool) (*exec.Cmd, error) {
	cmd := exec.Command(exe, plan.Args...)
	if viewStdout {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	logging.S().Debugw("spawning lightningd", "exe", exe, "args", plan.Args)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", exe, err)
	}
	return cmd, nil
}

func retryOpts() []retry.Option {
	return []retry.Option{
		retry.Attempts(pollAttempts),
		retry.Delay(pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
}

// awaitReady blocks until the daemon is serving RPC and fully synchronized,
// in two bounded phases. Phase one waits for the control socket file to
// appear; a daemon that never creates it did not initialize, and the launch
// fails with ErrSockPathNotExist. Phase two polls getinfo until neither sync
// warning is present; exhausting the budget fails with ErrGetInfoSyncing.
// Keeping the phases separate tells a process that never started apart from
// one that started but never caught up to its backend.
func awaitReady(ws *workspace.Workspace, network string) (*rpc.Client, *rpc.GetInfo, error) {
	sockPath := filepath.Join(ws.Path(), network, socketFileName)

	err := retry.Do(func() error {
		_, err := os.Stat(sockPath)
		return err
	}, retryOpts()...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrSockPathNotExist, sockPath)
	}

	client := rpc.NewClient(sockPath)

	var info *rpc.GetInfo
	err = retry.Do(func() error {
		i, err := client.GetInfo()
		if err != nil {
			// socket exists but may not accept connections yet.
			return err
		}
		if i.Syncing() {
			return fmt.Errorf("syncing: bitcoind=%q lightningd=%q",
				i.WarningBitcoindSync, i.WarningLightningdSync)
		}
		info = i
		return nil
	}, retryOpts()...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrGetInfoSyncing, err)
	}

	return client, info, nil
}

// bootstrap wires the freshly started node into the requested topology:
// dial the configured peer, if any, and compose this node's own PeerTarget
// when it was launched in a listening mode.
func (n *Node) bootstrap(conf *Conf, selfID, bindAddr string) error {
	if target := conf.P2P.Connect; target != nil {
		host, port, err := target.HostPort()
		if err != nil {
			return err
		}
		if _, err := n.Client.Connect(target.ID, host, port); err != nil {
			return fmt.Errorf("failed to connect to peer %s: %w", target.ID, err)
		}
		logging.S().Debugw("connected to peer", "peer", target.ID, "addr", target.Addr)
	}

	if bindAddr != "" {
		n.self = &PeerTarget{ID: selfID, Addr: bindAddr}
	}
	return nil
}

// PeerTarget returns this node's own identity and listen address, for a
// subsequently launched node to connect to. Nil when the node was launched
// with NoP2P.
func (n *Node) PeerTarget() *PeerTarget {
	if n.self == nil {
		return nil
	}
	cp := *n.self
	return &cp
}

// WorkDir returns the node's private working directory.
func (n *Node) WorkDir() string {
	return n.workdir.Path()
}

// Shutdown tears the node down: best-effort RPC stop, kill of the child
// process, and removal of the workspace. It is idempotent and never returns
// an error; teardown failures are logged and swallowed, since the workspace
// is disposable and the test runner reaps stray processes on exit.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		var merr *multierror.Error

		if n.Client != nil {
			merr = multierror.Append(merr, n.Client.Stop())
		}
		if n.process != nil && n.process.Process != nil {
			merr = multierror.Append(merr, n.process.Process.Kill())
			_ = n.process.Wait()
		}
		merr = multierror.Append(merr, n.workdir.Remove())

		if err := merr.ErrorOrNil(); err != nil {
			logging.S().Debugw("node teardown finished with errors", "workdir", n.workdir.Path(), "err", err)
		}
	})
}
