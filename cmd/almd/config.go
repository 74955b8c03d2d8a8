package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alium-swap/ledger/errors"
)

const configFile = "config.toml"

// Config of the node, stored in the home directory.
type Config struct {
	// DBFile is the bbolt database file, relative to the home directory.
	DBFile string `toml:"db_file"`
	// GenesisFile is loaded when the database is empty.
	GenesisFile string `toml:"genesis_file"`
	LogLevel    string `toml:"log_level"`
	// ReleaseInterval is how often the redistribution pool is released.
	ReleaseInterval string `toml:"release_interval"`
	// MetricsAddr is where /metrics is served. Empty disables it.
	MetricsAddr string `toml:"metrics_addr"`
}

// DefaultConfig returns the configuration written by init.
func DefaultConfig() Config {
	return Config{
		DBFile:          "ledger.db",
		GenesisFile:     "genesis.json",
		LogLevel:        "info",
		ReleaseInterval: "1h",
		MetricsAddr:     "127.0.0.1:9464",
	}
}

func (c Config) Validate() error {
	var errs error
	if c.DBFile == "" {
		errs = errors.AppendField(errs, "DBFile", errors.ErrInvalidInput.New("required"))
	}
	if c.GenesisFile == "" {
		errs = errors.AppendField(errs, "GenesisFile", errors.ErrInvalidInput.New("required"))
	}
	if d, err := time.ParseDuration(c.ReleaseInterval); err != nil || d <= 0 {
		errs = errors.AppendField(errs, "ReleaseInterval", errors.ErrInvalidInput.Newf("invalid interval %q", c.ReleaseInterval))
	}
	return errs
}

// Interval returns the parsed release interval.
func (c Config) Interval() time.Duration {
	d, _ := time.ParseDuration(c.ReleaseInterval)
	return d
}

// homePath resolves a file name relative to the home directory.
func homePath(home, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(home, name)
}

// LoadConfig reads the configuration from the home directory. Missing
// values are taken from the default configuration.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig()
	p := filepath.Join(home, configFile)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(p, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrInvalidInput, "decode %s: %s", p, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, p)
	}
	return cfg, nil
}

// WriteConfig stores the configuration in the home directory.
func WriteConfig(home string, cfg Config) error {
	f, err := os.Create(filepath.Join(home, configFile))
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "create config: %s", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "encode config: %s", err)
	}
	return nil
}
