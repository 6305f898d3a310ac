package config

// EnvConfig contains the harness configuration. It is populated by coalescing
// values from these sources, in descending order of precedence:
//
//  1. environment variables.
//  2. harness.toml in the harness home directory.
//  3. default fallbacks.
type EnvConfig struct {
	Daemon   DaemonConfig   `toml:"daemon"`
	Bitcoind BitcoindConfig `toml:"bitcoind"`
}

// DaemonConfig selects the lightning daemon executable and how its instances
// are launched.
type DaemonConfig struct {
	Exe        string `toml:"exe"`
	Network    string `toml:"network"`
	ViewStdout bool   `toml:"view_stdout"`
}

// BitcoindConfig points at the already-running backend node.
type BitcoindConfig struct {
	RPCHost    string `toml:"rpc_host"`
	RPCPort    int    `toml:"rpc_port"`
	CookieFile string `toml:"cookie_file"`
}
