package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/events"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/server"
)

// ServerCmd starts the DevTycoon HTTP and raid server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the HTTP API and raid WebSocket server",
	Long: `Launch the DevTycoon server: the compile API the editor calls, the
runtime preview, saved graphs, and the /ws/raid socket that keeps raid
rooms in sync. Raid limits and allowed origins reload when the config file
changes.`,
	RunE: runServer,
}

var (
	serverPort   int
	serverDBPath string
)

func init() {
	ServerCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (default: server.port from config)")
	ServerCmd.Flags().StringVar(&serverDBPath, "db-path", "", "Custom database path (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Server logs at Info unless asked for more
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = logger.VerbosityInfo
		if err := logger.InitializeWithVerbosity(logger.JSONRequested(), verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	logger.SetTheme(cfg.GetServerLogTheme())

	port := serverPort
	if port == 0 {
		port = cfg.GetServerPort()
	}

	dbPath, err := resolveDatabasePath(serverDBPath)
	if err != nil {
		return err
	}
	database, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	var opts []server.Option
	if cfg.Events.NATSURL != "" {
		publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warnw("NATS disconnected", logger.FieldError, fmt.Sprint(err))
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Infow("NATS reconnected", logger.FieldAddress, nc.ConnectedUrl())
			}),
		)
		if err != nil {
			return errors.Wrap(err, "failed to connect raid event publisher")
		}
		defer publisher.Close()
		opts = append(opts, server.WithPublisher(publisher))
	}

	srv, err := server.NewServer(database, cfg, logger.Named("server"), opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv.WatchConfig(am.ConfigFileInUse())

	printStartupBanner(verbosity, dbPath, cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port, func(addr string) {
			pterm.Success.Printfln("Listening on %s", addr)
		})
	}()

	// Wait for shutdown signal (Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		// Server failed to start or stopped unexpectedly
		srv.Stop()
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		// First Ctrl+C - graceful shutdown
		pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			// Second Ctrl+C - force immediate exit
			pterm.Warning.Println("Force shutdown - exiting immediately")
			os.Exit(1)
			return nil
		}
	}
}
