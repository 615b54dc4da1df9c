package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "bridge.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.Equal(t, TransportHTTP, cfg.Communicator.Type)
	assert.Equal(t, "info", cfg.Log.Level)

	// The default must land on disk so the operator can edit it.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address: localhost:8080")
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	content := `
server:
  address: 0.0.0.0:9000
communicator:
  type: grpc
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, TransportGRPC, cfg.Communicator.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "localhost:8080", cfg.Server.Address)
	assert.Equal(t, TransportHTTP, cfg.Communicator.Type)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BRIDGE_PORT", "9999")
	t.Setenv("BRIDGE_TRANSPORT", "grpc")
	t.Setenv("BRIDGE_LOG_LEVEL", "error")

	cfg, err := Load(filepath.Join(t.TempDir(), "bridge.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:9999", cfg.Server.Address)
	assert.Equal(t, TransportGRPC, cfg.Communicator.Type)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_AddrOverrideWinsOverFile(t *testing.T) {
	t.Setenv("BRIDGE_ADDR", "127.0.0.1:7777")

	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: localhost:8080\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7777", cfg.Server.Address)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "unknown transport",
			content: "communicator:\n  type: carrier-pigeon\n",
			wantErr: ErrInvalidTransport,
		},
		{
			name:    "unknown log level",
			content: "log:\n  level: loud\n",
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "malformed yaml",
			content: "server: [unclosed\n",
			wantErr: ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bridge.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
