package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/airrunner/internal/app"
	"github.com/ayusman/airrunner/internal/config"
	"github.com/ayusman/airrunner/internal/plugin"
	"github.com/ayusman/airrunner/internal/server"
	"github.com/ayusman/airrunner/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	setupLogging(cfg)
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("AirRunner stopped")
	}
}

// setupLogging configures the global zerolog logger: readable console output
// in development, JSON in production.
func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}
}

func run(cfg config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.PluginDir).Msg("plugin discovery failed")
	}
	for _, p := range plugins.List() {
		log.Info().Str("plugin", p.Manifest.Name).Str("version", p.Manifest.Version).Msg("plugin loaded")
	}

	a, err := app.New(app.Config{
		Store:          st,
		Plugins:        plugins,
		Executor:       plugin.NewExecutor(cfg.PluginTimeout),
		CameraIndex:    cfg.Camera,
		FrameInterval:  cfg.FrameInterval(),
		Countdown:      cfg.Countdown,
		SilenceTimeout: cfg.SilenceTimeout,
		Calibration:    cfg.Calibration(0, 0),
		QueueSize:      cfg.QueueSize,
	})
	if err != nil {
		return err
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving dashboard")
	}
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Addr) })

	if !cfg.NoTray {
		runTray(gctx, stop, a, dashboardURL(cfg.Addr))
	}

	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := a.Close(closeCtx); cerr != nil {
		log.Warn().Err(cerr).Msg("error during shutdown")
	}
	log.Info().Msg("AirRunner stopped")
	return err
}

// findWebDir searches for the dashboard in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	p := filepath.Join(dataDir, "web")
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return ""
}
