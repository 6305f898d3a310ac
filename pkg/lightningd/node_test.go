package lightningd

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RCasatta/lightningd/pkg/bitcoind"
	"github.com/RCasatta/lightningd/pkg/rpc"
	"github.com/RCasatta/lightningd/pkg/rpc/rpctest"
	"github.com/RCasatta/lightningd/pkg/workspace"
)

// shortPollBudget shrinks the readiness budget so failure paths finish in
// well under a second instead of thirty.
func shortPollBudget(t *testing.T) {
	t.Helper()
	oldInterval, oldAttempts := pollInterval, pollAttempts
	pollInterval, pollAttempts = 10*time.Millisecond, 5
	t.Cleanup(func() { pollInterval, pollAttempts = oldInterval, oldAttempts })
}

// fakeDaemonSocket creates <ws>/regtest/lightning-rpc served by an rpctest
// daemon, simulating a lightningd that already initialized.
func fakeDaemonSocket(t *testing.T, ws *workspace.Workspace) (*rpctest.Daemon, string) {
	t.Helper()
	dir := filepath.Join(ws.Path(), "regtest")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	sock := filepath.Join(dir, socketFileName)
	d, err := rpctest.Serve(sock)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d, sock
}

func TestAwaitReadySocketNeverAppears(t *testing.T) {
	shortPollBudget(t)
	ws := testWorkspace(t)

	_, _, err := awaitReady(ws, "regtest")
	require.ErrorIs(t, err, ErrSockPathNotExist)
}

func TestAwaitReadyAfterSyncCatchesUp(t *testing.T) {
	shortPollBudget(t)
	ws := testWorkspace(t)
	d, _ := fakeDaemonSocket(t, ws)

	// first two polls still syncing, then clean.
	var calls int64
	d.Handle("getinfo", func(json.RawMessage) (interface{}, *rpc.RPCError) {
		info := rpc.GetInfo{ID: "02deadbeef", Network: "regtest", Blockheight: 100}
		if atomic.AddInt64(&calls, 1) <= 2 {
			info.WarningLightningdSync = "Still loading latest blocks from bitcoind."
		}
		return info, nil
	})

	client, info, err := awaitReady(ws, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "02deadbeef", info.ID)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(3))

	// the returned client is live.
	again, err := client.GetInfo()
	require.NoError(t, err)
	assert.False(t, again.Syncing())
}

func TestAwaitReadyNeverSynced(t *testing.T) {
	shortPollBudget(t)
	ws := testWorkspace(t)
	d, _ := fakeDaemonSocket(t, ws)

	d.Handle("getinfo", func(json.RawMessage) (interface{}, *rpc.RPCError) {
		return rpc.GetInfo{ID: "02deadbeef", WarningBitcoindSync: "Bitcoind is not up to date."}, nil
	})

	_, _, err := awaitReady(ws, "regtest")
	require.ErrorIs(t, err, ErrGetInfoSyncing)
}

func TestBootstrapConnectsAndExposesSelf(t *testing.T) {
	ws := testWorkspace(t)
	d, sock := fakeDaemonSocket(t, ws)

	var got struct {
		ID   string `json:"id"`
		Host string `json:"host"`
		Port int    `json:"port"`
	}
	d.Handle("connect", func(params json.RawMessage) (interface{}, *rpc.RPCError) {
		if err := json.Unmarshal(params, &got); err != nil {
			return nil, &rpc.RPCError{Code: -32602, Message: err.Error()}
		}
		return rpc.ConnectResult{ID: got.ID}, nil
	})

	n := &Node{Client: rpc.NewClient(sock), workdir: ws}
	conf := &Conf{P2P: P2P{
		ListenAnnounce: Listen,
		Connect:        &PeerTarget{ID: "03aabb", Addr: "127.0.0.1:9735"},
	}}

	require.NoError(t, n.bootstrap(conf, "02deadbeef", "127.0.0.1:10101"))

	assert.Equal(t, "03aabb", got.ID)
	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, 9735, got.Port)

	self := n.PeerTarget()
	require.NotNil(t, self)
	assert.Equal(t, "02deadbeef", self.ID)
	assert.Equal(t, "127.0.0.1:10101", self.Addr)
}

func TestBootstrapConnectFailureIsFatal(t *testing.T) {
	ws := testWorkspace(t)
	d, sock := fakeDaemonSocket(t, ws)
	d.Handle("connect", func(json.RawMessage) (interface{}, *rpc.RPCError) {
		return nil, &rpc.RPCError{Code: 401, Message: "Connection refused"}
	})

	n := &Node{Client: rpc.NewClient(sock), workdir: ws}
	conf := &Conf{P2P: P2P{Connect: &PeerTarget{ID: "03aabb"}}}

	err := n.bootstrap(conf, "02deadbeef", "")
	var rpcErr *rpc.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Nil(t, n.PeerTarget())
}

func TestBootstrapNoP2PExposesNoSelf(t *testing.T) {
	ws := testWorkspace(t)
	_, sock := fakeDaemonSocket(t, ws)

	n := &Node{Client: rpc.NewClient(sock), workdir: ws}
	require.NoError(t, n.bootstrap(&Conf{}, "02deadbeef", ""))
	assert.Nil(t, n.PeerTarget())
}

func TestStartWithConfMissingCookie(t *testing.T) {
	backend := &bitcoind.ConnInfo{
		RPCHost:    "127.0.0.1",
		RPCPort:    18443,
		CookieFile: filepath.Join(t.TempDir(), "absent"),
	}

	_, err := StartWithConf("lightningd-that-does-not-exist", backend, &Conf{})
	require.ErrorIs(t, err, bitcoind.ErrMissingAuth)
}

func TestStartWithConfSpawnFailure(t *testing.T) {
	_, err := StartWithConf(filepath.Join(t.TempDir(), "no-such-exe"), testBackend(t), &Conf{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSockPathNotExist)
}

func TestStartWithConfSocketNeverAppears(t *testing.T) {
	shortPollBudget(t)

	// a process that starts fine but never creates the control socket.
	_, err := StartWithConf("sleep", testBackend(t), &Conf{Args: []string{"60"}})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSockPathNotExist)
}

func TestShutdownIdempotent(t *testing.T) {
	ws := testWorkspace(t)

	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())

	n := &Node{process: cmd, workdir: ws}
	n.Shutdown()

	_, err := os.Stat(ws.Path())
	require.True(t, os.IsNotExist(err), "workspace must be removed")
	require.NotNil(t, cmd.ProcessState, "process must have been reaped")

	// second shutdown is a no-op.
	n.Shutdown()
}
