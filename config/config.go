// Package config holds the configuration of a verifier process: the
// node it talks to, how it scans for votes, and where its keypairs
// live. Everything the verification core depends on is injected from
// here rather than read from globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/0xNineteen/sol-lightnode/libs/log"
)

const (
	// DefaultDirName is the directory under $HOME used as the default
	// root.
	DefaultDirName = ".sollight"

	defaultConfigDir      = "config"
	defaultKeysDir        = "keys"
	defaultConfigFileName = "config.toml"

	defaultPayerKeyName     = "payer.json"
	defaultRecipientKeyName = "recipient.json"

	// defaultDirPerm is the default permissions used when creating
	// directories.
	defaultDirPerm = 0700
)

// Config is the top-level configuration of a verifier process.
type Config struct {
	RootDir string `mapstructure:"home"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	RPC   RPCConfig   `mapstructure:"rpc"`
	Light LightConfig `mapstructure:"light"`
	Track TrackConfig `mapstructure:"track"`
}

// RPCConfig locates the JSON-RPC node the verifier queries.
type RPCConfig struct {
	// Remote is the JSON-RPC endpoint URL.
	Remote string `mapstructure:"remote"`
}

// LightConfig tunes the verification pipeline.
type LightConfig struct {
	// Window is the number of slots scanned for votes after a
	// verified slot.
	Window uint64 `mapstructure:"window"`

	// RetryInterval is the poll interval while data has not yet
	// reached the node.
	RetryInterval time.Duration `mapstructure:"retry-interval"`

	// FetchWorkers is the number of block fetches in flight during a
	// vote scan. One fetches sequentially.
	FetchWorkers int `mapstructure:"fetch-workers"`
}

// TrackConfig configures the probe transaction the track command
// plants and then verifies.
type TrackConfig struct {
	// PayerKeyFile is the path of the funding keypair, relative to
	// the root unless absolute.
	PayerKeyFile string `mapstructure:"payer-key-file"`

	// RecipientKeyFile is the path of the receiving keypair. The file
	// is generated on first use when absent.
	RecipientKeyFile string `mapstructure:"recipient-key-file"`

	// Lamports is the transfer amount of the probe transaction.
	Lamports uint64 `mapstructure:"lamports"`
}

// DefaultConfig returns a default configuration pointed at a local
// node.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  log.LogLevelInfo,
		LogFormat: log.LogFormatPlain,
		RPC: RPCConfig{
			Remote: "http://127.0.0.1:8899",
		},
		Light: LightConfig{
			Window:        40,
			RetryInterval: 500 * time.Millisecond,
			FetchWorkers:  1,
		},
		Track: TrackConfig{
			PayerKeyFile:     filepath.Join(defaultKeysDir, defaultPayerKeyName),
			RecipientKeyFile: filepath.Join(defaultKeysDir, defaultRecipientKeyName),
			Lamports:         5000,
		},
	}
}

// TestConfig returns a configuration for tests: tight retries, a
// small window, quiet logs.
func TestConfig() *Config {
	cfg := DefaultConfig()
	cfg.LogLevel = log.LogLevelError
	cfg.Light.Window = 4
	cfg.Light.RetryInterval = 10 * time.Millisecond
	return cfg
}

// SetRoot sets the root directory the relative paths resolve
// against.
func (cfg *Config) SetRoot(root string) *Config {
	cfg.RootDir = root
	return cfg
}

// ConfigFilePath returns the path of the config file under the root.
func (cfg *Config) ConfigFilePath() string {
	return rootify(filepath.Join(defaultConfigDir, defaultConfigFileName), cfg.RootDir)
}

// PayerKeyFilePath returns the resolved payer keypair path.
func (cfg *Config) PayerKeyFilePath() string {
	return rootify(cfg.Track.PayerKeyFile, cfg.RootDir)
}

// RecipientKeyFilePath returns the resolved recipient keypair path.
func (cfg *Config) RecipientKeyFilePath() string {
	return rootify(cfg.Track.RecipientKeyFile, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds,
// etc.) and returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	switch cfg.LogFormat {
	case log.LogFormatPlain, log.LogFormatText, log.LogFormatJSON:
	default:
		return fmt.Errorf("unknown log-format %q", cfg.LogFormat)
	}
	if cfg.RPC.Remote == "" {
		return fmt.Errorf("rpc.remote must not be empty")
	}
	if cfg.Light.Window == 0 {
		return fmt.Errorf("light.window must be at least 1")
	}
	if cfg.Light.RetryInterval <= 0 {
		return fmt.Errorf("light.retry-interval must be positive")
	}
	if cfg.Light.FetchWorkers < 1 {
		return fmt.Errorf("light.fetch-workers must be at least 1")
	}
	return nil
}

// EnsureRoot creates the root, config, and keys directories if they
// don't exist.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, defaultConfigDir),
		filepath.Join(rootDir, defaultKeysDir),
	} {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultRootDir returns the default root under the user's home
// directory, or the working directory when home cannot be resolved.
func DefaultRootDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// rootify makes config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
