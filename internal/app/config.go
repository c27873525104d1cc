package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"postboard/internal/wire"
)

// EnvPrefix prefixes every environment override, e.g. POSTBOARD_KEYS_DIR.
const EnvPrefix = "postboard"

const (
	defaultLogLevel        = "NOTICE"
	defaultKeyBackend      = KeyBackendFile
	defaultBoltFile        = "keys.db"
	defaultServerIOTimeout = 300
	defaultClientIOTimeout = 30
	defaultDialAttempts    = 3
)

// Key store backends.
const (
	KeyBackendFile = "file"
	KeyBackendBolt = "bolt"
)

// Config is the top level postboard configuration, shared by server and client.
type Config struct {
	Logging Logging
	Keys    Keys
	Server  Server
	Client  Client
	Metrics Metrics
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

// Keys selects where key pairs live.
type Keys struct {
	// Backend is "file" (one PEM file per key) or "bolt".
	Backend string

	// Dir holds <id>.pub and <id>.prv files for the file backend.
	Dir string

	// BoltPath is the database file for the bolt backend. Relative paths
	// are taken from Dir.
	BoltPath string `split_words:"true"`

	// Passphrase opens sealed private keys and seals private keys saved
	// through the key store. `board seal` takes its new passphrase separately.
	Passphrase string
}

// Server is the board server configuration.
type Server struct {
	// IOTimeout is the per-operation connection deadline in seconds.
	IOTimeout int `split_words:"true"`

	// MaxEnvelopeSize bounds a single envelope on the wire, in bytes.
	MaxEnvelopeSize int `split_words:"true"`
}

// Client is the board client configuration.
type Client struct {
	// IOTimeout is the per-operation connection deadline in seconds.
	IOTimeout int `split_words:"true"`

	// DialAttempts bounds connection attempts on transient failures.
	DialAttempts int `split_words:"true"`
}

// Metrics is the Prometheus exporter configuration.
type Metrics struct {
	// Address to serve /metrics on; empty disables the exporter.
	Address string
}

// Timeout returns IOTimeout as a duration.
func (s Server) Timeout() time.Duration { return time.Duration(s.IOTimeout) * time.Second }

// Timeout returns IOTimeout as a duration.
func (c Client) Timeout() time.Duration { return time.Duration(c.IOTimeout) * time.Second }

// FixupAndValidate applies defaults to config entries and validates the
// supplied configuration. Most people should call one of the Load variants
// instead.
func (cfg *Config) FixupAndValidate() error {
	lvl := strings.ToUpper(cfg.Logging.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", cfg.Logging.Level)
	}
	cfg.Logging.Level = lvl

	switch cfg.Keys.Backend {
	case KeyBackendFile, KeyBackendBolt:
	case "":
		cfg.Keys.Backend = defaultKeyBackend
	default:
		return fmt.Errorf("config: Keys: Backend '%v' is invalid", cfg.Keys.Backend)
	}
	if cfg.Keys.Dir == "" {
		cfg.Keys.Dir = "."
	}
	if cfg.Keys.BoltPath == "" {
		cfg.Keys.BoltPath = defaultBoltFile
	}
	if !filepath.IsAbs(cfg.Keys.BoltPath) {
		cfg.Keys.BoltPath = filepath.Join(cfg.Keys.Dir, cfg.Keys.BoltPath)
	}

	if cfg.Server.IOTimeout < 0 || cfg.Client.IOTimeout < 0 {
		return errors.New("config: IOTimeout must not be negative")
	}
	if cfg.Server.IOTimeout == 0 {
		cfg.Server.IOTimeout = defaultServerIOTimeout
	}
	if cfg.Client.IOTimeout == 0 {
		cfg.Client.IOTimeout = defaultClientIOTimeout
	}
	switch {
	case cfg.Server.MaxEnvelopeSize < 0:
		return errors.New("config: Server: MaxEnvelopeSize must not be negative")
	case cfg.Server.MaxEnvelopeSize == 0:
		cfg.Server.MaxEnvelopeSize = wire.DefaultMaxEnvelopeSize
	}
	switch {
	case cfg.Client.DialAttempts < 0:
		return errors.New("config: Client: DialAttempts must not be negative")
	case cfg.Client.DialAttempts == 0:
		cfg.Client.DialAttempts = defaultDialAttempts
	}
	return nil
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Resolve reads the optional config file f and applies environment
// overrides on top. The result is not validated yet, so that command line
// flags can still be applied before FixupAndValidate.
func Resolve(f string) (*Config, error) {
	cfg := new(Config)
	if f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		if cfg, err = decode(b); err != nil {
			return nil, fmt.Errorf("config: %s: %w", f, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}

func decode(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("no nil buffer as config file")
	}
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}
	return cfg, nil
}
