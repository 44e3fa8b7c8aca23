// The scribed command runs the collaborative markdown document server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scribe-md/scribe/auth"
	"github.com/scribe-md/scribe/broadcast"
	"github.com/scribe-md/scribe/config"
	"github.com/scribe-md/scribe/console"
	"github.com/scribe-md/scribe/document"
	"github.com/scribe-md/scribe/session"
	"github.com/scribe-md/scribe/transport"
)

var (
	flagInterval time.Duration
	flagRoles    string
	flagSnapshot string
	flagBaseDir  string
	verbose      bool

	rootCmd = &cobra.Command{
		Use:           "scribed",
		Short:         "Run the collaborative markdown document server",
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          run,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().DurationVar(&flagInterval, "interval", 0, "broadcast interval (overrides SCRIBE_BROADCAST_INTERVAL)")
	rootCmd.Flags().StringVar(&flagRoles, "roles", "", "roles file path (overrides SCRIBE_ROLES_FILE)")
	rootCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "snapshot file path written on a clean QUIT (overrides SCRIBE_SNAPSHOT_FILE)")
	rootCmd.Flags().StringVar(&flagBaseDir, "base-dir", "", "working directory FIFOs are created under (overrides SCRIBE_BASE_DIR)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cmd, &cfg)

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if cfg.BaseDir != "." {
		if err := os.Chdir(cfg.BaseDir); err != nil {
			return fmt.Errorf("chdir %s: %w", cfg.BaseDir, err)
		}
	}

	roles, err := auth.Load(cfg.RolesFile)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}

	doc := document.New()
	clients := session.NewRegistry()
	history := session.NewHistory()
	bcast := broadcast.New(doc, clients, cfg.BroadcastInterval, logger)

	listener, err := transport.Listen()
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	srv := &session.Server{
		Doc:      doc,
		Roles:    roles,
		Clients:  clients,
		History:  history,
		Logger:   logger,
		OnCommit: bcast.Trigger,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bcast.Run(gctx.Done())
		return nil
	})

	g.Go(func() error {
		return acceptLoop(gctx, listener, srv, logger)
	})

	g.Go(func() error {
		c := console.New(doc, clients, history, cfg.SnapshotFile, os.Stdin, os.Stdout)
		err := c.Run()
		cancel()
		if console.IsQuit(err) {
			return nil
		}
		return err
	})

	fmt.Printf("Server PID: %d\n", os.Getpid())
	fmt.Printf("Broadcast interval: %s\n", cfg.BroadcastInterval)

	return g.Wait()
}

// applyFlagOverrides layers explicitly-passed flags on top of the
// environment-sourced config, flag by flag, so a flag the operator never
// set doesn't clobber an env var or default with its zero value.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("interval") {
		cfg.BroadcastInterval = flagInterval
	}
	if cmd.Flags().Changed("roles") {
		cfg.RolesFile = flagRoles
	}
	if cmd.Flags().Changed("snapshot") {
		cfg.SnapshotFile = flagSnapshot
	}
	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDir = flagBaseDir
	}
}

// acceptLoop hands every connecting client PID off to its own session
// goroutine, creating and opening the FIFO pair before handing control to
// session.Server.Run.
func acceptLoop(ctx context.Context, listener *transport.Listener, srv *session.Server, logger *log.Logger) error {
	for {
		select {
		case pid := <-listener.Requests():
			go func(pid int) {
				c2sName, s2cName, err := transport.CreatePair(pid)
				if err != nil {
					logger.Error("create fifo pair failed", "pid", pid, "err", err)
					return
				}
				if err := transport.Notify(pid); err != nil {
					logger.Error("notify client failed", "pid", pid, "err", err)
					return
				}
				pipe, err := transport.Open(pid, c2sName, s2cName)
				if err != nil {
					logger.Error("open fifo pair failed", "pid", pid, "err", err)
					return
				}
				if err := srv.Run(pipe); err != nil {
					logger.Error("session ended with error", "pid", pid, "err", err)
				}
			}(pid)
		case err := <-listener.Errs():
			return err
		case <-ctx.Done():
			return nil
		}
	}
}
