package lightningd

import (
	"fmt"

	"github.com/RCasatta/lightningd/pkg/bitcoind"
	"github.com/RCasatta/lightningd/pkg/ports"
	"github.com/RCasatta/lightningd/pkg/workspace"
)

// LaunchPlan is the fully resolved command line for one daemon launch. It is
// plain data: building it touches nothing but the backend cookie file (for
// credentials) and, when a listening mode is requested, the port allocator.
type LaunchPlan struct {
	// Args is the complete argv tail, caller extras last.
	Args []string

	// BindAddr is the p2p listen address baked into Args, empty for NoP2P.
	BindAddr string
}

// buildPlan derives the daemon command line from the workspace, the backend
// coordinates and the launch conf. It fails with bitcoind.ErrMissingAuth
// before anything is spawned when the backend credentials cannot be read.
func buildPlan(ws *workspace.Workspace, backend *bitcoind.ConnInfo, conf *Conf) (*LaunchPlan, error) {
	user, pass, err := backend.Credentials()
	if err != nil {
		return nil, err
	}

	args := []string{
		fmt.Sprintf("--network=%s", conf.network()),
		fmt.Sprintf("--bitcoin-rpcconnect=%s", backend.RPCHost),
		fmt.Sprintf("--bitcoin-rpcport=%d", backend.RPCPort),
		fmt.Sprintf("--bitcoin-rpcuser=%s", user),
		fmt.Sprintf("--bitcoin-rpcpassword=%s", pass),
		fmt.Sprintf("--lightning-dir=%s", ws.Path()),
	}

	plan := &LaunchPlan{}
	switch conf.P2P.ListenAnnounce {
	case NoP2P:
	case Listen, ListenAndAnnounce:
		port, err := ports.Allocate()
		if err != nil {
			return nil, err
		}
		plan.BindAddr = fmt.Sprintf("127.0.0.1:%d", port)

		flag := "--bind-addr"
		if conf.P2P.ListenAnnounce == ListenAndAnnounce {
			flag = "--addr"
		}
		args = append(args, fmt.Sprintf("%s=%s", flag, plan.BindAddr))
	default:
		return nil, fmt.Errorf("unknown p2p mode %v", conf.P2P.ListenAnnounce)
	}

	plan.Args = append(args, conf.Args...)
	return plan, nil
}
