// Package config carries the deployment-specific parameters of the
// validator: the DAO system identifier, the validator's own type identity,
// and tooling settings.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DAOTypeHash is the hex-encoded 32-byte identity of the host ledger's
	// DAO system script. Deployment-specific; there is no usable default.
	DAOTypeHash string `yaml:"dao_type_hash"`
	// SelfTypeHash optionally pins the validator's own identity for tooling
	// that verifies stored snapshots.
	SelfTypeHash string `yaml:"self_type_hash,omitempty"`
	DataDir      string `yaml:"data_dir"`
	LogLevel     string `yaml:"log_level"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultConfig() Config {
	return Config{
		DataDir:  ".wstake",
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := decodeHash32(c.DAOTypeHash, "dao_type_hash"); err != nil {
		return err
	}
	if c.SelfTypeHash != "" {
		if _, err := decodeHash32(c.SelfTypeHash, "self_type_hash"); err != nil {
			return err
		}
	}
	if _, ok := allowedLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("config: log_level %q not one of debug/info/warn/error", c.LogLevel)
	}
	return nil
}

// DAOID returns the decoded DAO system identifier.
func (c Config) DAOID() ([32]byte, error) {
	return decodeHash32(c.DAOTypeHash, "dao_type_hash")
}

// SelfID returns the decoded validator identity, when pinned.
func (c Config) SelfID() ([32]byte, bool, error) {
	if c.SelfTypeHash == "" {
		return [32]byte{}, false, nil
	}
	id, err := decodeHash32(c.SelfTypeHash, "self_type_hash")
	return id, err == nil, err
}

func decodeHash32(s, name string) ([32]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("config: %s: %w", name, err)
	}
	if len(raw) != 32 {
		return [32]byte{}, fmt.Errorf("config: %s: expected 32 bytes, got %d", name, len(raw))
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}
