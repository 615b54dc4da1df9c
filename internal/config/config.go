package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Transport selects the wire substrate for the server and clients.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config is the process-level configuration for the bridge server and its
// clients. Missing files are replaced by a written-out default so the
// operator always has a file to edit.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Communicator struct {
		Type string `yaml:"type"`
	} `yaml:"communicator"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Process struct {
		DefaultTimeoutMs int64 `yaml:"default_timeout_ms"`
	} `yaml:"process"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Server.Address = "localhost:8080"
	cfg.Communicator.Type = TransportHTTP
	cfg.Log.Level = "info"
	cfg.Process.DefaultTimeoutMs = 0
	return cfg
}

// Load reads the config at path, writing and returning the default config
// when the file does not exist yet. Environment variables BRIDGE_ADDR,
// BRIDGE_PORT, BRIDGE_TRANSPORT and BRIDGE_LOG_LEVEL override the file.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := writeDefault(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigReadFailed, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParseFailed, err)
	}
	return cfg, nil
}

func writeDefault(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("BRIDGE_ADDR"); addr != "" {
		cfg.Server.Address = addr
	}
	if port := os.Getenv("BRIDGE_PORT"); port != "" {
		host, _, err := splitHostPort(cfg.Server.Address)
		if err != nil {
			host = "localhost"
		}
		cfg.Server.Address = host + ":" + port
	}
	if transport := os.Getenv("BRIDGE_TRANSPORT"); transport != "" {
		cfg.Communicator.Type = transport
	}
	if level := os.Getenv("BRIDGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// splitHostPort tolerates addresses without a port, unlike net.SplitHostPort.
func splitHostPort(addr string) (host, port string, err error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("address %q has no port", addr)
}

func (c *Config) validate() error {
	switch c.Communicator.Type {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, c.Communicator.Type)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}
