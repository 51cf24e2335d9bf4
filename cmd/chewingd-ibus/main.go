//go:build linux

// chewingd-ibus is the IBus input method engine for chewingd.
//
// IBus launches it with -ibus once the component is registered. It owns
// the bus name from the configuration, exports a factory and serves one
// composition engine per input context. Edits to the configuration file
// reach every open context without a restart.
//
// Installation:
//  1. Copy the binary to /usr/local/bin/chewingd-ibus
//  2. Run: chewingd-ibus -install
//  3. Enable via: ibus-setup or GNOME Settings > Keyboard > Input Sources
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"chewingd/internal/config"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
	"chewingd/internal/logging"
	"chewingd/internal/store"
	"chewingd/internal/zhuyin"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	ibusFlag := flag.Bool("ibus", false, "started by IBus")
	installFlag := flag.Bool("install", false, "install the IBus component for this user")
	uninstallFlag := flag.Bool("uninstall", false, "remove the IBus component")
	debug := flag.Bool("debug", false, "log at debug level to stderr")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("chewingd-ibus", ime.ChewingdVersion)
		return
	}

	if *installFlag || *uninstallFlag {
		platform := ime.NewPlatform(ime.DefaultConfig())
		var err error
		if *installFlag {
			err = platform.Install()
		} else {
			err = platform.Uninstall()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "chewingd-ibus: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done. IBus has been restarted.")
		return
	}

	if err := run(*configPath, *debug, *ibusFlag); err != nil {
		fmt.Fprintf(os.Stderr, "chewingd-ibus: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug, byIBus bool) error {
	if configPath == "" {
		configPath = config.FindConfigFile()
		if configPath == "" {
			configPath = config.ConfigPath()
		}
	}
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Output = "stderr"
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()
	logging.SetDefault(logger)
	if byIBus {
		logger.Debug("started by ibus", "config", configPath)
	}

	lock, err := acquireLock(filepath.Join(config.RuntimeDir(), "chewingd-ibus.lock"))
	if err != nil {
		return err
	}
	defer lock.Release()

	var user zhuyin.UserDict
	if cfg.Storage.Learn {
		st, err := store.Open(cfg.Storage.DBPath())
		if err != nil {
			return fmt.Errorf("open phrase store: %w", err)
		}
		defer st.Close()
		user = st
	}

	ibusCfg := cfg.IBusServer()
	ibusCfg.NewClient = clientFactory(user, logger.WithComponent("zhuyin").Logger)
	ibusCfg.Logger = logger.WithComponent("ibus").Logger
	server, err := ime.NewIBusServer(ibusCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		logger.Info("shutting down", "contexts", server.Contexts())
		return server.Stop()
	})

	g.Go(func() error {
		return watchConfig(ctx, loader, server, logger.Logger)
	})

	return g.Wait()
}

func newLogger(c config.LoggingConfig) (*logging.Logger, error) {
	lc, err := c.Logger()
	if err != nil {
		return nil, fmt.Errorf("logging config: %w", err)
	}
	return logging.New(lc)
}

// clientFactory opens one engine per input context. All engines share
// the user phrase store; without one each engine learns in memory.
func clientFactory(user zhuyin.UserDict, log *slog.Logger) func() (engine.Client, error) {
	return func() (engine.Client, error) {
		opts := []zhuyin.Option{zhuyin.WithLogger(log)}
		if user != nil {
			opts = append(opts, zhuyin.WithUserDict(user))
		}
		return zhuyin.New(opts...), nil
	}
}

// reloader is the part of *ime.IBusServer a configuration change touches.
type reloader interface {
	Reload(ime.SessionConfig)
}

// watchConfig pushes every valid configuration edit to the server until
// ctx ends. A file that cannot be watched only disables hot reload.
func watchConfig(ctx context.Context, loader *config.Loader, server reloader, log *slog.Logger) error {
	loader.OnChange(func(c *config.Config) {
		server.Reload(c.Chewing.Session())
	})
	if err := loader.Watch(); err != nil {
		log.Warn("configuration hot reload disabled", "path", loader.Path(), "error", err)
		return nil
	}
	defer loader.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-loader.Errors():
			var verrs config.ValidationErrors
			if errors.As(err, &verrs) {
				log.Warn("configuration rejected", "path", loader.Path(), "fields", verrs.Fields(), "error", err)
				continue
			}
			log.Warn("configuration reload failed", "path", loader.Path(), "error", err)
		}
	}
}
