package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MrMark1127/arma-tactical/internal/api"
	"github.com/MrMark1127/arma-tactical/internal/auth"
	"github.com/MrMark1127/arma-tactical/internal/config"
	"github.com/MrMark1127/arma-tactical/internal/database"
	"github.com/MrMark1127/arma-tactical/internal/geo"
	"github.com/MrMark1127/arma-tactical/internal/influx"
	"github.com/MrMark1127/arma-tactical/internal/logging"
	"github.com/MrMark1127/arma-tactical/internal/monitor"
	intOtel "github.com/MrMark1127/arma-tactical/internal/otel"
	"github.com/MrMark1127/arma-tactical/internal/server"
	"github.com/MrMark1127/arma-tactical/internal/storage"
	"github.com/MrMark1127/arma-tactical/internal/stream"
	"github.com/MrMark1127/arma-tactical/internal/worker"
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Version can be set at build time via ldflags.
	Version = "0.0.1"

	configDir string

	sessionStart = time.Now()
)

var rootCmd = &cobra.Command{
	Use:     "tacmap",
	Short:   "Tactical map planning server with a mortar calculator",
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

var (
	solveServer  string
	solveUser    string
	solvePass    string
	solveFaction string
	solveShell   string
	solveCharge  int
	solveMortar  string
	solveTarget  string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute firing solutions against a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSolve()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".",
		"directory containing tacmap.cfg.json")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	solveCmd.Flags().StringVar(&solveServer, "server", "http://localhost:8080", "server base URL")
	solveCmd.Flags().StringVar(&solveUser, "username", "", "account username")
	solveCmd.Flags().StringVar(&solvePass, "password", "", "account password")
	solveCmd.Flags().StringVar(&solveFaction, "faction", "US", "firing faction (US or RU)")
	solveCmd.Flags().StringVar(&solveShell, "shell", "HE", "shell type (HE, SMOKE, ILLUM)")
	solveCmd.Flags().IntVar(&solveCharge, "charge", -1, "charge rings 0-4; -1 solves all")
	solveCmd.Flags().StringVar(&solveMortar, "mortar", "", "mortar position as x,y[,z] in world meters")
	solveCmd.Flags().StringVar(&solveTarget, "target", "", "target position as x,y[,z] in world meters")
	rootCmd.AddCommand(solveCmd)
}

func runSolve() error {
	mortar, err := geo.Position3DFromString(solveMortar)
	if err != nil {
		return fmt.Errorf("mortar position %q: %w", solveMortar, err)
	}
	target, err := geo.Position3DFromString(solveTarget)
	if err != nil {
		return fmt.Errorf("target position %q: %w", solveTarget, err)
	}

	client := api.New(solveServer)
	if err := client.Healthcheck(); err != nil {
		return err
	}
	if _, err := client.Login(solveUser, solvePass); err != nil {
		return err
	}

	var charge *int
	if solveCharge >= 0 {
		charge = &solveCharge
	}
	solutions, err := client.Solve(core.FireMission{
		Mortar:  mortar,
		Target:  target,
		Faction: core.Faction(solveFaction),
		Shell:   core.ShellType(solveShell),
	}, charge)
	if err != nil {
		return err
	}

	fmt.Printf("%-7s %-6s %-8s %-8s %-9s %-4s %s\n",
		"CHARGE", "DIST", "BEARING", "MILS", "ELEV", "TOF", "IN RANGE")
	for _, sol := range solutions {
		fmt.Printf("%-7d %-6d %-8d %-8d %-9d %-4d %v\n",
			sol.ChargeRings, sol.Distance, sol.BearingDeg,
			sol.BearingMils, sol.ElevationMils, sol.TimeOfFlight, sol.InRange)
	}
	return nil
}

// setupLogging builds the slog fan-out: console, file, optional OTel and
// optional Graylog.
func setupLogging() (*logging.SlogManager, *intOtel.Provider, error) {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs dir: %w", err)
	}

	logFile, err := os.OpenFile(
		logging.LogFilePath(logsDir, "tacmap", sessionStart),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var otelProvider *intOtel.Provider
	if config.GetBool("otel.enabled") {
		otelLog, err := os.OpenFile(
			filepath.Join(logsDir, "tacmap.otel.jsonl"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open otel log file: %w", err)
		}
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      true,
			ServiceName:  "tacmap",
			BatchTimeout: 5 * time.Second,
			LogWriter:    otelLog,
			Endpoint:     config.GetString("otel.endpoint"),
			Insecure:     config.GetBool("otel.insecure"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize otel: %w", err)
		}
	} else {
		otelProvider, _ = intOtel.New(intOtel.Config{})
	}

	var extra []slog.Handler
	if config.GetBool("graylog.enabled") {
		gelf, err := logging.NewGelfHandler(
			config.GetString("graylog.address"),
			config.GetString("logLevel"),
		)
		if err != nil {
			// Graylog being down should not stop the server.
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			extra = append(extra, gelf)
		}
	}

	mgr := logging.NewSlogManager()
	mgr.Setup(logFile, config.GetString("logLevel"), otelProvider.LoggerProvider(), extra...)
	return mgr, otelProvider, nil
}

func runServe() error {
	if err := config.Load(configDir); err != nil {
		return err
	}

	logMgr, otelProvider, err := setupLogging()
	if err != nil {
		return err
	}
	logger := logMgr.Logger()
	logger.Info("Starting tacmap", "version", Version)

	backend, err := storage.NewBackend(config.Storage())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return err
	}
	defer backend.Close()

	jwtMgr, err := auth.NewJWTManager(
		config.GetString("server.jwtSecret"),
		time.Duration(config.GetInt("server.tokenTTLMinutes"))*time.Minute,
	)
	if err != nil {
		return err
	}

	calibration, err := geo.NewCalibration(
		config.GetFloat("map.extentMeters"),
		config.GetInt("map.imageWidth"),
		config.GetInt("map.imageHeight"),
	)
	if err != nil {
		return err
	}
	anchor := geo.Anchor{
		Longitude: config.GetFloat("map.anchorLongitude"),
		Latitude:  config.GetFloat("map.anchorLatitude"),
	}

	var telemetry server.Telemetry
	if config.GetBool("influx.enabled") {
		influxMgr := influx.NewManager(zerolog.New(os.Stderr).With().Timestamp().Logger())
		if err := influxMgr.Connect(); err != nil {
			logger.Warn("InfluxDB telemetry unavailable", "error", err)
		} else {
			defer influxMgr.Close()
			telemetry = influxMgr
		}
	}

	hub := stream.NewHub(logger)
	events := worker.NewManager(worker.Dependencies{Hub: hub, Logger: logger})
	events.Start()
	defer events.Stop()

	if config.GetBool("monitor.enabled") {
		mon := monitor.NewService(monitor.Dependencies{
			Logger:     logger,
			Interval:   time.Duration(config.GetInt("monitor.intervalSeconds")) * time.Second,
			StatusPath: filepath.Join(config.GetString("logsDir"), "status.json"),
			HubStats:   hub.Stats,
			QueueDepth: events.Depth,
		})
		mon.Start()
		defer mon.Stop()
	}

	solveCounter, err := otelProvider.Meter("tacmap").Int64Counter("calculator.solves")
	if err != nil {
		return err
	}

	srv := server.New(server.Dependencies{
		Backend:     backend,
		Hub:         hub,
		Events:      events,
		JWT:         jwtMgr,
		Calibration: calibration,
		Anchor:      anchor,
		Logger:      logger,
		Telemetry:   telemetry,
		SolveCount: func(faction string) {
			solveCounter.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("faction", faction)))
		},
	})

	// Serve until interrupted, then drain.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(config.GetString("server.listen"))
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	_ = logMgr.Flush(ctx)
	_ = otelProvider.Shutdown(ctx)
	return nil
}

func runMigrate() error {
	if err := config.Load(configDir); err != nil {
		return err
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	mgr := database.NewManager(log)
	if err := mgr.Connect(); err != nil {
		return err
	}
	if err := mgr.Migrate(); err != nil {
		return err
	}
	log.Info().Str("sqlitePath", viper.GetString("db.sqlitePath")).
		Bool("local", mgr.ShouldSaveLocal).
		Msg("Migration complete")
	return nil
}
