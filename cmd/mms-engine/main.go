// Command mms-engine is the daemon entry point: it loads configuration,
// wires the dispatcher to a bus adapter, and runs until idle (unless
// --keep-running) or a termination signal arrives. Grounded on
// mms-engine/main.c's option surface and lifecycle.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jessevdk/go-flags"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/busadapter"
	"github.com/nemomobile/mms-engine-sub000/config"
	"github.com/nemomobile/mms-engine-sub000/dispatcher"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

type options struct {
	ConfigFile   string `short:"c" long:"config" description:"Path to the engine's YAML config file" value-name:"FILE"`
	RootDir      string `short:"d" long:"root-dir" description:"Root directory for MMS files" value-name:"DIR"`
	IdleSecs     int    `short:"i" long:"idle-secs" description:"Inactivity timeout in seconds" default:"-1"`
	KeepRunning  bool   `short:"k" long:"keep-running" description:"Keep running after everything is done"`
	Verbose      bool   `short:"v" long:"verbose" description:"Be verbose (equivalent to -l=debug)"`
	LogLevel     string `short:"l" long:"log-level" description:"Set log level (debug|info|warn|error)" value-name:"LEVEL"`
	HTTPFallback string `long:"http-fallback" description:"Listen address for the JSON/HTTP control surface" value-name:"ADDR"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mms-engine: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if opts.RootDir != "" {
		cfg.DataDir = opts.RootDir
	}
	if opts.IdleSecs >= 0 {
		cfg.IdleTimeout = time.Duration(opts.IdleSecs) * time.Second
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if opts.HTTPFallback != "" {
		cfg.HTTPFallbackAddr = opts.HTTPFallback
	}

	log := logging.NewLogger("engine", parseLevel(cfg.LogLevel))
	log.Info("starting, root dir %s", cfg.DataDir)

	task.SetRetryInterval(cfg.RetryInterval)

	var atticDir string
	if cfg.AtticEnabled {
		atticDir = filepath.Join(cfg.DataDir, "attic")
	}

	sp, err := settingsProvider(cfg.SettingsFile)
	if err != nil {
		log.Warn("settings: %v, falling back to defaults for every SIM", err)
		sp = nil
	}

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mms-engine: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	h := busadapter.NewDBusHandler(conn, cfg.BusName, log)
	disp := dispatcher.New(cfg, noBearer{}, h, sp, log)
	if err := disp.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "mms-engine: %v\n", err)
		os.Exit(1)
	}

	srv := busadapter.NewServerWithConn(conn, disp, cfg.BusName, atticDir, log)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "mms-engine: %v\n", err)
		os.Exit(1)
	}
	defer srv.Stop()

	var fallback *busadapter.HTTPFallback
	if cfg.HTTPFallbackAddr != "" {
		fallback = busadapter.NewHTTPFallback(disp, cfg.HTTPFallbackAddr, atticDir, log)
		if err := fallback.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "mms-engine: %v\n", err)
			os.Exit(1)
		}
	}

	done := make(chan struct{}, 1)
	if !opts.KeepRunning {
		disp.SetDelegate(dispatcherDoneFunc(func(*dispatcher.Dispatcher) {
			select {
			case done <- struct{}{}:
			default:
			}
		}))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("caught signal, shutting down")
	case <-done:
		log.Info("idle, exiting")
	}

	disp.Stop()
	if fallback != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = fallback.Stop(ctx)
	}
	log.Info("exiting")
}

// noBearer is the default bearer.Manager when no operator integration
// layer (§1's external collaborator) is wired in: every Open is
// declined, so connection-needing tasks go Sleep/NetworkUnavailable per
// their own retry policy rather than the daemon refusing to start.
type noBearer struct{}

func (noBearer) Open(ctx context.Context, imsi string) (*bearer.Connection, error) {
	return nil, nil
}

func (noBearer) Close(ctx context.Context, conn *bearer.Connection) error { return nil }

func settingsProvider(path string) (settings.Provider, error) {
	if path == "" {
		return nil, nil
	}
	return settings.LoadFileProvider(path)
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.Debug
	case "warn":
		return logging.Warn
	case "error":
		return logging.Error
	default:
		return logging.Info
	}
}

type dispatcherDoneFunc func(*dispatcher.Dispatcher)

func (f dispatcherDoneFunc) DispatcherDone(d *dispatcher.Dispatcher) { f(d) }
