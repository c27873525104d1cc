package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/op/go-logging.v1"

	"postboard/internal/domain"
	"postboard/internal/log"
	"postboard/internal/services/identity"
	"postboard/internal/store"
)

// App holds the long-lived dependencies built from a Config.
type App struct {
	Config *Config
	Logs   *log.Backend
	Keys   domain.KeyRing

	log       *logging.Logger
	closeKeys func() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logWriter io.Writer
}

// WithLogWriter sends logs to w unless a log file is configured.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// New builds an App from a validated cfg.
func New(cfg *Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logs, err := newLogs(cfg.Logging, o.logWriter)
	if err != nil {
		return nil, err
	}

	keys, closeKeys, err := openKeys(cfg.Keys)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logs:      logs,
		Keys:      keys,
		log:       logs.GetLogger("app"),
		closeKeys: closeKeys,
	}
	a.log.Debugf("Key backend %q in %s", cfg.Keys.Backend, cfg.Keys.Dir)
	return a, nil
}

// Identity returns the key inspection service over the App's key ring.
func (a *App) Identity() *identity.Service {
	return identity.New(a.Keys)
}

// Seal rewrites id's private key sealed under passphrase, in the same
// backend, and returns the key fingerprint. An empty passphrase stores the
// key unsealed.
func (a *App) Seal(id domain.UserID, passphrase string) (string, error) {
	if passphrase != "" {
		if err := identity.CheckPassphrase(passphrase); err != nil {
			return "", err
		}
	}

	var dst domain.KeyWriter
	switch ks := a.Keys.(type) {
	case *store.FileKeyStore:
		dst = ks.WithPassphrase(passphrase)
	case *store.BoltKeyStore:
		dst = ks.WithPassphrase(passphrase)
	default:
		return "", fmt.Errorf("key backend %T cannot seal keys", a.Keys)
	}
	fp, err := a.Identity().CopyTo(id, dst)
	if err != nil {
		return "", err
	}
	a.log.Noticef("Resealed private key of %q", id)
	return fp, nil
}

// Close releases the key ring and the log file.
func (a *App) Close() error {
	var errs []error
	if a.closeKeys != nil {
		errs = append(errs, a.closeKeys())
	}
	errs = append(errs, a.Logs.Close())
	return errors.Join(errs...)
}

func newLogs(cfg Logging, w io.Writer) (*log.Backend, error) {
	if w == nil || cfg.File != "" || cfg.Disable {
		return log.New(cfg.File, cfg.Level, cfg.Disable)
	}
	lvl, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithWriter(w, lvl, nil), nil
}

func openKeys(k Keys) (domain.KeyRing, func() error, error) {
	switch k.Backend {
	case KeyBackendBolt:
		bs, err := store.OpenBoltKeyStore(k.BoltPath, k.Passphrase)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	case KeyBackendFile:
		if err := os.MkdirAll(k.Dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("key directory: %w", err)
		}
		return store.NewFileKeyStore(k.Dir, k.Passphrase), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown key backend %q", k.Backend)
	}
}
