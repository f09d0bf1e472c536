package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConnection is the connection used when none is named.
const DefaultConnection = "default"

// EnvConfig points at a config file when --config is not given.
const EnvConfig = "SQLAB_CONFIG"

var (
	ErrNoConfig          = errors.New("sqlab: no config file found")
	ErrUnknownConnection = errors.New("sqlab: unknown connection")
)

// Connection is one named entry under `connections:`.
type Connection struct {
	Name    string        `mapstructure:"-"`
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SqlabConfig struct {
	Connections map[string]Connection `mapstructure:"connections"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// File is the config file actually read.
	File string `mapstructure:"-"`
}

// LoadConfig reads the YAML config at path. An empty path searches
// $SQLAB_CONFIG, ./sqlab.yaml and $HOME/.config/sqlab/sqlab.yaml in order.
// String values may be overridden with SQLAB_* environment variables, e.g.
// SQLAB_CONNECTIONS_DEFAULT_DSN.
func LoadConfig(path string) (*SqlabConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("sqlab")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.level", "warn")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sqlab")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sqlab"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg SqlabConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// AutomaticEnv only applies to keys viper was asked about explicitly.
	for name, conn := range cfg.Connections {
		prefix := "connections." + name + "."
		conn.Name = name
		conn.Driver = v.GetString(prefix + "driver")
		conn.DSN = v.GetString(prefix + "dsn")
		conn.Timeout = v.GetDuration(prefix + "timeout")
		cfg.Connections[name] = conn
	}

	return &cfg, nil
}

// Connection returns the named entry, or the default one for an empty name.
func (c *SqlabConfig) Connection(name string) (Connection, error) {
	if name == "" {
		name = DefaultConnection
	}
	conn, ok := c.Connections[name]
	if !ok {
		return Connection{}, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
	}
	if conn.Driver == "" || conn.DSN == "" {
		return Connection{}, fmt.Errorf("connection %q: driver and dsn are required", name)
	}
	conn.Name = name
	return conn, nil
}
