package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bidwatch/internal/config"
	"bidwatch/internal/daemon"
	"bidwatch/internal/engine"
	"bidwatch/internal/feed"
	"bidwatch/internal/ledger"
	"bidwatch/internal/messenger"
	"bidwatch/internal/window"
	logx "bidwatch/pkg/logx"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "bidwatch",
		Short:         "Procurement notice watcher: polls the public feed and texts subscribers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "./config.yaml", "path to config file (YAML or JSON)")

	root.AddCommand(runCmd(&cfgPath))
	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(windowCmd(&cfgPath))
	return root
}

// runCmd executes a single batch pass and exits. This is the mode to use from
// an external scheduler (systemd timer, crontab).
func runCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one batch pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotenv()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			logsvc, log := logx.New(cfg.LogSettings())
			defer logsvc.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			orch, err := buildOrchestrator(cfg, log)
			if err != nil {
				return err
			}
			rep, err := orch.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("window %s, sent %d\n", rep.Window, rep.TotalSent())
			return nil
		},
	}
}

// serveCmd runs the internal scheduler: one pass at every configured batch
// hour, with live config reload.
func serveCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a daemon, firing a pass at each batch hour",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotenv()

			boot := logx.NewConsole("info")
			mgr := config.NewManager(*cfgPath, boot)
			cfg, err := mgr.Load()
			if err != nil {
				return err
			}

			logsvc, log := logx.New(cfg.LogSettings())
			defer logsvc.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := func(ctx context.Context, cfg *config.Config) {
				orch, err := buildOrchestrator(cfg, log)
				if err != nil {
					log.Error("pass setup failed", logx.Err(err))
					return
				}
				rep, err := orch.Run(ctx)
				if err != nil {
					log.Error("pass failed", logx.String("window", rep.Window.String()), logx.Err(err))
					return
				}
				log.Info("pass finished",
					logx.String("window", rep.Window.String()),
					logx.Int("sent", rep.TotalSent()),
				)
			}

			svc := daemon.New(mgr, logsvc, log, runner)
			log.Info("bidwatch serving", logx.String("config", *cfgPath))
			return svc.Run(ctx)
		},
	}
}

// windowCmd prints the polling window a pass would use, without touching the
// feed or the ledger. Handy for checking batch-hour configs.
func windowCmd(cfgPath *string) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the polling window for the configured batch hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotenv()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.ParseInLocation("2006-01-02 15:04", at, time.Local)
				if err != nil {
					return fmt.Errorf("bad --at value %q: %w", at, err)
				}
			}

			win, err := window.Compute(now, cfg.Batch.Hours)
			if err != nil {
				return err
			}
			fmt.Printf("now   %s\nbegin %s\nend   %s\n",
				now.Format("2006-01-02 15:04"), win.BeginStamp(), win.EndStamp())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `compute for this time instead of now ("2006-01-02 15:04")`)
	return cmd
}

// buildOrchestrator assembles one pass worth of machinery from the current
// config. Serve mode calls this per trigger so config changes apply cleanly.
func buildOrchestrator(cfg *config.Config, log logx.Logger) (*engine.Orchestrator, error) {
	fc, err := cfg.FeedSettings()
	if err != nil {
		return nil, err
	}
	mc, err := cfg.MessengerSettings()
	if err != nil {
		return nil, err
	}
	lc, err := cfg.LedgerSettings()
	if err != nil {
		return nil, err
	}

	msgr, err := messenger.Open(mc, log)
	if err != nil {
		return nil, err
	}

	eval := engine.NewEvaluator(feed.New(fc, log), log)
	disp := engine.NewDispatcher(msgr, cfg.Batch.ResultLimit, cfg.Batch.RatePerSec, log)
	opener := func() (ledger.Store, error) { return ledger.Open(lc, log) }
	users := config.UsersFile{Path: cfg.UsersFile}

	return engine.NewOrchestrator(cfg.Batch.Hours, nil, users, opener, eval, disp, log)
}
