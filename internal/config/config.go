// Package config builds AirRunner's runtime configuration from flags and
// environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/airrunner/internal/calibration"
	"github.com/ayusman/airrunner/internal/gesture"
)

// Environment variables that override built-in defaults. Flags override both.
const (
	EnvAddr      = "AIRRUNNER_ADDR"
	EnvCamera    = "AIRRUNNER_CAMERA"
	EnvDataDir   = "AIRRUNNER_DATA_DIR"
	EnvPluginDir = "AIRRUNNER_PLUGIN_DIR"
	EnvWebDir    = "AIRRUNNER_WEB_DIR"
	EnvEnv       = "AIRRUNNER_ENV"
	EnvLogLevel  = "AIRRUNNER_LOG_LEVEL"
)

// Defaults.
const (
	DefaultAddr          = "127.0.0.1:8080"
	DefaultFPS           = 30
	DefaultCountdown     = 4 * time.Second
	DefaultQueueSize     = 16
	DefaultPluginTimeout = 2 * time.Second
	DefaultLogLevel      = "info"
	// NoCamera means the camera index comes from stored settings.
	NoCamera = -1
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the process configuration. User-tunable game options live in
// the settings store, not here.
type Config struct {
	Addr      string
	DataDir   string
	PluginDir string
	WebDir    string
	// Camera overrides the stored camera index when not NoCamera.
	Camera   int
	Env      string
	LogLevel string
	NoTray   bool

	FPS                int
	Countdown          time.Duration
	SilenceTimeout     time.Duration
	CalibrationPrepare time.Duration
	CalibrationRecord  time.Duration
	QueueSize          int
	PluginTimeout      time.Duration
}

// Default returns the built-in configuration with data under ~/.airrunner.
func Default() Config {
	dataDir := ".airrunner"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".airrunner")
	}
	cal := calibration.DefaultConfig()
	return Config{
		Addr:               DefaultAddr,
		DataDir:            dataDir,
		PluginDir:          filepath.Join(dataDir, "plugins"),
		Camera:             NoCamera,
		Env:                "development",
		LogLevel:           DefaultLogLevel,
		FPS:                DefaultFPS,
		Countdown:          DefaultCountdown,
		SilenceTimeout:     gesture.DefaultSilenceTimeout,
		CalibrationPrepare: cal.Prepare,
		CalibrationRecord:  cal.Record,
		QueueSize:          DefaultQueueSize,
		PluginTimeout:      DefaultPluginTimeout,
	}
}

// Load parses args (without the program name) on top of the environment
// and the defaults, then validates the result.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()

	cfg.Addr = envString(getenv, EnvAddr, cfg.Addr)
	cfg.DataDir = envString(getenv, EnvDataDir, cfg.DataDir)
	// The plugin dir follows the data dir unless set explicitly.
	cfg.PluginDir = envString(getenv, EnvPluginDir, filepath.Join(cfg.DataDir, "plugins"))
	cfg.WebDir = envString(getenv, EnvWebDir, cfg.WebDir)
	cfg.Env = envString(getenv, EnvEnv, cfg.Env)
	cfg.LogLevel = envString(getenv, EnvLogLevel, cfg.LogLevel)
	camera, err := envInt(getenv, EnvCamera, cfg.Camera)
	if err != nil {
		return Config{}, err
	}
	cfg.Camera = camera

	fs := flag.NewFlagSet("airrunner", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the database")
	fs.StringVar(&cfg.PluginDir, "plugin-dir", cfg.PluginDir, "directory to discover plugins in")
	fs.StringVar(&cfg.WebDir, "web-dir", cfg.WebDir, "directory with dashboard static files")
	fs.IntVar(&cfg.Camera, "camera", cfg.Camera, "camera index (-1 uses the stored setting)")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "development or production")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	fs.BoolVar(&cfg.NoTray, "no-tray", cfg.NoTray, "run without the system tray")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames processed per second")
	fs.DurationVar(&cfg.Countdown, "countdown", cfg.Countdown, "READY countdown before a session accepts input")
	fs.DurationVar(&cfg.SilenceTimeout, "silence-timeout", cfg.SilenceTimeout, "absence before the game is paused")
	fs.DurationVar(&cfg.CalibrationPrepare, "calibration-prepare", cfg.CalibrationPrepare, "prepare phase per calibration step")
	fs.DurationVar(&cfg.CalibrationRecord, "calibration-record", cfg.CalibrationRecord, "record phase per calibration step")
	fs.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "pending key presses before new ones are dropped")
	fs.DurationVar(&cfg.PluginTimeout, "plugin-timeout", cfg.PluginTimeout, "deadline for one plugin call")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: empty data dir", ErrInvalidConfig)
	case c.Camera < NoCamera:
		return fmt.Errorf("%w: camera %d", ErrInvalidConfig, c.Camera)
	case c.FPS <= 0 || c.FPS > 120:
		return fmt.Errorf("%w: fps %d must be within [1,120]", ErrInvalidConfig, c.FPS)
	case c.Countdown < 0:
		return fmt.Errorf("%w: negative countdown", ErrInvalidConfig)
	case c.SilenceTimeout <= 0:
		return fmt.Errorf("%w: silence timeout must be positive", ErrInvalidConfig)
	case c.CalibrationPrepare <= 0 || c.CalibrationRecord <= 0:
		return fmt.Errorf("%w: calibration phases must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	case c.PluginTimeout <= 0:
		return fmt.Errorf("%w: plugin timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Production reports whether logs should be JSON.
func (c Config) Production() bool {
	return c.Env == "production"
}

// DBPath returns the SQLite database path.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "airrunner.db")
}

// FrameInterval returns the pipeline tick for FPS.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Calibration returns the calibration session timing for frames of the
// given size.
func (c Config) Calibration(width, height int) calibration.Config {
	return calibration.Config{
		Prepare:     c.CalibrationPrepare,
		Record:      c.CalibrationRecord,
		FrameWidth:  width,
		FrameHeight: height,
	}
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
	}
	return n, nil
}
