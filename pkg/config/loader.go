package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"

	"github.com/RCasatta/lightningd/pkg/logging"
)

const (
	// EnvHarnessHome overrides the directory harness.toml is read from.
	EnvHarnessHome = "LIGHTNINGD_HARNESS_HOME"

	// EnvLightningdExe points at the daemon executable and takes precedence
	// over anything in harness.toml.
	EnvLightningdExe = "LIGHTNINGD_EXE"

	configFile = "harness.toml"
)

// Defaults returns the fallback configuration: lightningd from PATH, regtest
// network, and the stock regtest bitcoind coordinates.
func Defaults() EnvConfig {
	home, _ := os.UserHomeDir()
	return EnvConfig{
		Daemon: DaemonConfig{
			Exe:     "lightningd",
			Network: "regtest",
		},
		Bitcoind: BitcoindConfig{
			RPCHost:    "127.0.0.1",
			RPCPort:    18443,
			CookieFile: filepath.Join(home, ".bitcoin", "regtest", ".cookie"),
		},
	}
}

// Load populates the config from harness.toml and the environment. A missing
// config file is fine; defaults cover every field.
func (e *EnvConfig) Load() error {
	home := os.Getenv(EnvHarnessHome)
	if home == "" {
		if v, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(v, ".lightningd-harness")
		}
	}

	if home != "" {
		path := filepath.Join(home, configFile)
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, e); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			logging.S().Debugw("loaded harness config", "path", path)
		}
	}

	// fill whatever the file left unset.
	if err := mergo.Merge(e, Defaults()); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if exe := os.Getenv(EnvLightningdExe); exe != "" {
		e.Daemon.Exe = exe
	}
	return nil
}
