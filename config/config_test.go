package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wstake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	daoHash := strings.Repeat("ab", 32)
	cfg, err := Load(writeConfig(t, "dao_type_hash: "+daoHash+"\nlog_level: debug\n"))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ".wstake", cfg.DataDir)

	id, err := cfg.DAOID()
	require.NoError(t, err)
	require.Equal(t, byte(0xab), id[0])

	_, ok, err := cfg.SelfID()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidate(t *testing.T) {
	daoHash := strings.Repeat("00", 32)

	t.Run("missing dao hash", func(t *testing.T) {
		cfg := DefaultConfig()
		require.Error(t, cfg.Validate())
	})

	t.Run("short dao hash", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DAOTypeHash = "abcd"
		require.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DAOTypeHash = daoHash
		cfg.LogLevel = "loud"
		require.Error(t, cfg.Validate())
	})

	t.Run("self hash optional but checked", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DAOTypeHash = daoHash
		require.NoError(t, cfg.Validate())
		cfg.SelfTypeHash = "zz"
		require.Error(t, cfg.Validate())
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
