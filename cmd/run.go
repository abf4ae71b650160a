package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/pulse/cli"
	"github.com/grovetools/pulse/config"
	"github.com/grovetools/pulse/editor/nvim"
	"github.com/grovetools/pulse/git"
	"github.com/grovetools/pulse/ignore"
	"github.com/grovetools/pulse/internal/daemon/engine"
	"github.com/grovetools/pulse/internal/daemon/pidfile"
	"github.com/grovetools/pulse/internal/daemon/server"
	"github.com/grovetools/pulse/internal/daemon/store"
	"github.com/grovetools/pulse/internal/poller"
	"github.com/grovetools/pulse/logging"
	"github.com/grovetools/pulse/pkg/paths"
	"github.com/grovetools/pulse/report"
	"github.com/grovetools/pulse/repository"
	"github.com/grovetools/pulse/tui/monitor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the `run` command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reporter in the foreground",
		Long: `Attaches to Neovim and reports editing activity until interrupted.

The reporter holds a pid file so only one instance runs at a time and serves
its status over a unix socket (see 'pulse status'). Config file changes are
picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			withMonitor, _ := cmd.Flags().GetBool("monitor")
			return runReporter(cmd, withMonitor)
		},
	}
	cmd.Flags().BoolP("monitor", "m", false, "Show a live activity monitor")
	return cmd
}

// pipeline is the set of components behind a Poller.
type pipeline struct {
	editor     *nvim.Session
	ignore     *ignore.Cache
	resolver   *repository.Resolver
	dispatcher *report.Dispatcher
	logger     *logrus.Entry

	mu        sync.Mutex
	transport string
}

func (pl *pipeline) Close() {
	pl.dispatcher.Cancel()
	closeSender(pl.dispatcher.Sender())
	_ = pl.editor.Close()
}

func closeSender(s report.Sender) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

// reload applies a reloaded config to the running reporter. The sender is
// rebuilt when the transport changes; a config without a target or token is
// ignored and the running credentials stay.
func (pl *pipeline) reload(next *config.Config, p *poller.Poller) {
	if !next.HasCredentials() {
		pl.logger.Warn("Reloaded config has no target or token, keeping previous credentials")
		return
	}

	pl.mu.Lock()
	if next.Transport != pl.transport {
		prev := pl.dispatcher.SetSender(report.NewSender(next.Transport, next.Target))
		pl.logger.WithFields(logrus.Fields{
			"from": pl.transport,
			"to":   next.Transport,
		}).Info("Report transport changed")
		pl.transport = next.Transport
		go closeSender(prev)
	}
	pl.mu.Unlock()

	p.SetCredentials(poller.Credentials{Target: next.Target, Token: next.Token})
}

func newPipeline(cfg *config.Config, logger *logrus.Entry) (*pipeline, error) {
	repo := git.NewCLIRepository()

	cache, err := ignore.New(repo, cfg.Exclude, ignore.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &pipeline{
		editor:     nvim.New(cfg.Editor.Address),
		ignore:     cache,
		resolver:   repository.New(repo, logger),
		dispatcher: report.NewDispatcher(report.NewSender(cfg.Transport, cfg.Target), cfg.ReportTimeout()),
		logger:     logger,
		transport:  cfg.Transport,
	}, nil
}

func runReporter(cmd *cobra.Command, withMonitor bool) error {
	logger := cli.GetLogger(cmd, "pulse")

	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.CheckCredentials(); err != nil {
		return err
	}

	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create state directories: %w", err)
	}
	pidPath := paths.PidFilePath()
	if err := pidfile.Acquire(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.WithError(err).Error("Failed to release pidfile")
		}
	}()

	pl, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer pl.Close()

	st := store.New()
	p := poller.New(poller.Options{
		Editor:     pl.editor,
		Ignore:     pl.ignore,
		Resolver:   pl.resolver,
		Dispatcher: pl.dispatcher,
		Interval:   cfg.PollInterval(),
		Credentials: poller.Credentials{
			Target: cfg.Target,
			Token:  cfg.Token,
		},
		Logger: logger,
	})
	p.Observe(st.Observe)

	eng := engine.New(st, logger)
	eng.Register(p)

	srv := server.New(st, logger)
	srv.SetRunningConfig(&server.RunningConfig{
		Target:        cfg.Target,
		Transport:     cfg.Transport,
		Interval:      cfg.PollInterval(),
		Timeout:       cfg.ReportTimeout(),
		Exclude:       cfg.Exclude,
		EditorAddress: cfg.Editor.Address,
		Sources:       cfg.Sources,
		StartedAt:     time.Now(),
	})
	sockPath := paths.SocketPath()
	eng.Register(engine.Func("server", func(ctx context.Context) error {
		return srv.Run(ctx, sockPath)
	}))

	if watcher := newConfigWatcher(cmd, cfg, pl, p, st, logger); watcher != nil {
		eng.Register(engine.Func("config", func(ctx context.Context) error {
			watcher.Run(ctx)
			return watcher.Close()
		}))
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if withMonitor {
		prev := logging.SetGlobalOutput(io.Discard)
		defer logging.SetGlobalOutput(prev)

		updates := st.Subscribe()
		defer st.Unsubscribe(updates)

		prog := tea.NewProgram(
			monitor.New(st, updates, cfg.Target),
			tea.WithContext(ctx),
			tea.WithAltScreen(),
			tea.WithInput(cmd.InOrStdin()),
			tea.WithOutput(cmd.OutOrStdout()),
		)
		eng.Register(engine.Func("monitor", func(context.Context) error {
			_, err := prog.Run()
			if stderrors.Is(err, tea.ErrProgramKilled) {
				err = nil
			}
			stop()
			return err
		}))
	}

	logger.WithFields(logrus.Fields{
		"pid":    os.Getpid(),
		"socket": sockPath,
	}).Info("Starting reporter")

	if err := eng.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Reporter stopped")
	return nil
}

// newConfigWatcher returns a watcher that applies reloaded configs to the
// running pipeline, or nil when no config file was loaded.
func newConfigWatcher(cmd *cobra.Command, cfg *config.Config, pl *pipeline, p *poller.Poller, st *store.Store, logger *logrus.Entry) *config.Watcher {
	if len(cfg.Sources) == 0 {
		return nil
	}

	startDir, err := os.Getwd()
	if err != nil {
		return nil
	}
	if file := cli.GetOptions(cmd).ConfigFile; file != "" {
		startDir = filepath.Dir(file)
	}

	w, err := config.NewWatcher(startDir, cfg.Sources, config.DefaultDebounce, logger, func(next *config.Config) {
		pl.reload(next, p)
		source := ""
		if len(next.Sources) > 0 {
			source = next.Sources[len(next.Sources)-1]
		}
		st.BroadcastConfigReload(source)
	})
	if err != nil {
		logger.WithError(err).Warn("Config hot reload disabled")
		return nil
	}
	return w
}
