package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/server"
	"github.com/pable/wintracker/internal/snapshot"
)

var (
	servePort     int
	serveSnapshot time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve users, matches and reports over HTTP. With --snapshot-every (or
SNAPSHOT_INTERVAL) every user's report is re-rendered and published on a schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default PORT or 5200)")
	serveCmd.Flags().DurationVar(&serveSnapshot, "snapshot-every", 0, "publish snapshots at this interval; 0 disables (default SNAPSHOT_INTERVAL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if !cmd.Flags().Changed("port") {
		servePort = cfg.Port
	}
	if !cmd.Flags().Changed("snapshot-every") {
		serveSnapshot = cfg.SnapshotInterval
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	gen, err := newGenerator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveSnapshot > 0 {
		sink, err := newSink(ctx)
		if err != nil {
			return err
		}
		snap := &snapshot.Snapshotter{Store: st, Generator: gen, Sink: sink, Logger: logger}
		if err := snap.Start(serveSnapshot); err != nil {
			return err
		}
		defer snap.Shutdown()
		logger.Info("snapshot scheduler running", "tag", "snapshot", "every", serveSnapshot)
	}

	app := server.New(st, gen, logger)
	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(fmt.Sprintf(":%d", servePort))
	}()
	logger.Info("server running", "tag", "http", "addr", fmt.Sprintf("http://localhost:%d", servePort))

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "tag", "http")
	return app.ShutdownWithTimeout(10 * time.Second)
}
