package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/pocket-arcade/internal/config"
	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/sensor"
	"github.com/vovakirdan/pocket-arcade/internal/storage"
)

const shutdownGrace = 10 * time.Second

// SSHServerConfig configures the arcade SSH server.
type SSHServerConfig struct {
	Address     string        // host:port, ":23234" by default
	HostKeyPath string        // generated under DefaultDataDir when empty
	DBPath      string        // shared leaderboard of every user
	IdleTimeout time.Duration // drops connections with no input
	TickRate    int

	ConfigPath string
	Difficulty config.DifficultyPreset
}

// DefaultSSHServerConfig returns the defaults used by `pocket serve`.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.pocket-arcade/scores.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    core.DefaultTickRate,
	}
}

func (c SSHServerConfig) hostKey() string {
	if c.HostKeyPath != "" {
		return c.HostKeyPath
	}
	return filepath.Join(DefaultDataDir(), "host_key")
}

// SSHServer serves one arcade App per SSH connection.
type SSHServer struct {
	cfg    SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger

	active    atomic.Int64
	closeOnce sync.Once
}

// NewSSHServer prepares the host key and the score store. A store that
// cannot be opened only disables score keeping.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "pocket-ssh"})
	}
	s := &SSHServer{cfg: cfg, logger: logger}

	if store, err := storage.Open(cfg.DBPath); err != nil {
		logger.Warn("scores disabled", "db", cfg.DBPath, "err", err)
	} else {
		s.store = store
	}

	key := cfg.hostKey()
	if err := os.MkdirAll(filepath.Dir(key), 0o700); err != nil {
		s.closeStore()
		return nil, fmt.Errorf("tui: host key dir: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(key),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.sessionApp),
			s.trackSessions,
		),
	)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("tui: ssh server: %w", err)
	}
	s.server = server
	return s, nil
}

// sessionApp builds the App of one connection. It owns a private sensor
// hub fed by its keyboard and stays silent.
func (s *SSHServer) sessionApp(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("connection without a pty", "user", sess.User())
		return nil, nil
	}

	hub := sensor.NewHub()
	app := NewApp(AppConfig{
		Store:      s.store,
		Player:     sess.User(),
		Sensors:    hub,
		Virtual:    sensor.NewVirtual(hub),
		ConfigPath: s.cfg.ConfigPath,
		Difficulty: s.cfg.Difficulty,
		Logger:     s.logger.With("user", sess.User()),
	}, core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.cfg.TickRate,
		Seed:     time.Now().UnixNano(),
	})

	// A dropped connection never sends a quit key.
	go func() {
		<-sess.Context().Done()
		app.Close()
	}()

	return app, []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
}

func (s *SSHServer) trackSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		remote := sess.RemoteAddr().String()
		s.logger.Info("connected", "user", sess.User(), "remote", remote, "active", s.active.Add(1))
		defer func() {
			s.logger.Info("disconnected", "user", sess.User(), "remote", remote,
				"played", time.Since(start).Round(time.Second), "active", s.active.Add(-1))
		}()
		next(sess)
	}
}

// ListenAndServe serves until ctx is cancelled or the listener fails.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("ssh arcade listening", "addr", s.cfg.Address)

	errc := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if errors.Is(err, ssh.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		s.closeStore()
		return err
	case <-ctx.Done():
		s.logger.Info("ssh arcade stopping", "active", s.active.Load())
		return s.Shutdown()
	}
}

// Shutdown waits up to ten seconds for open sessions, then closes the store.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.closeStore()
	return err
}

func (s *SSHServer) closeStore() {
	s.closeOnce.Do(func() {
		if s.store != nil {
			s.store.Close()
		}
	})
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.cfg.Address
}
