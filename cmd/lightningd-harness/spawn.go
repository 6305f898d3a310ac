package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/RCasatta/lightningd/pkg/bitcoind"
	"github.com/RCasatta/lightningd/pkg/config"
	"github.com/RCasatta/lightningd/pkg/lightningd"
	"github.com/RCasatta/lightningd/pkg/logging"
)

var spawnCommand = &cli.Command{
	Name:  "spawn",
	Usage: "launch one or more nodes and keep them alive until interrupted",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "nodes", Value: 1, Usage: "number of nodes to launch"},
		&cli.BoolFlag{Name: "listen", Usage: "open a p2p port on every node and chain them pairwise"},
		&cli.BoolFlag{Name: "stdout", Usage: "pass the daemons' output through to the terminal"},
		&cli.StringFlag{Name: "exe", Usage: "lightningd executable (overrides config and LIGHTNINGD_EXE)"},
		&cli.StringFlag{Name: "bitcoind-host", Usage: "bitcoind RPC host"},
		&cli.IntFlag{Name: "bitcoind-port", Usage: "bitcoind RPC port"},
		&cli.StringFlag{Name: "cookie", Usage: "bitcoind cookie file"},
	},
	Action: spawnAction,
}

func spawnAction(c *cli.Context) error {
	var cfg config.EnvConfig
	if err := cfg.Load(); err != nil {
		return err
	}
	if v := c.String("exe"); v != "" {
		cfg.Daemon.Exe = v
	}
	if v := c.String("bitcoind-host"); v != "" {
		cfg.Bitcoind.RPCHost = v
	}
	if v := c.Int("bitcoind-port"); v != 0 {
		cfg.Bitcoind.RPCPort = v
	}
	if v := c.String("cookie"); v != "" {
		cfg.Bitcoind.CookieFile = v
	}

	backend := &bitcoind.ConnInfo{
		RPCHost:    cfg.Bitcoind.RPCHost,
		RPCPort:    cfg.Bitcoind.RPCPort,
		CookieFile: cfg.Bitcoind.CookieFile,
	}

	count := c.Int("nodes")
	listen := c.Bool("listen")

	var nodes []*lightningd.Node
	defer func() {
		for i := len(nodes) - 1; i >= 0; i-- {
			nodes[i].Shutdown()
		}
	}()

	// nodes come up one at a time: when chaining, each launch needs the peer
	// target of the previous one.
	var prev *lightningd.PeerTarget
	for i := 0; i < count; i++ {
		conf := &lightningd.Conf{
			ViewStdout: c.Bool("stdout"),
			Network:    cfg.Daemon.Network,
		}
		if listen {
			conf.P2P.ListenAnnounce = lightningd.Listen
			conf.P2P.Connect = prev
		}

		node, err := lightningd.StartWithConf(cfg.Daemon.Exe, backend, conf)
		if err != nil {
			return fmt.Errorf("failed to launch node %d: %w", i, err)
		}
		nodes = append(nodes, node)

		info, err := node.Client.GetInfo()
		if err != nil {
			return err
		}
		fmt.Printf("node %d: id=%s blockheight=%d dir=%s\n", i, info.ID, info.Blockheight, node.WorkDir())

		prev = node.PeerTarget()
	}

	fmt.Println("nodes up; ctrl-c to tear down")
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch

	logging.S().Info("tearing down")
	return nil
}
