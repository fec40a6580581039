package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"exiled-search/internal/app"
	"exiled-search/internal/stats"
	"exiled-search/internal/storage"
	"exiled-search/internal/surface/rodsurface"
	"exiled-search/internal/trade"
	"exiled-search/pkg/config"
	"exiled-search/pkg/logger"
	"exiled-search/pkg/notify"
	"exiled-search/pkg/sound"
)

const version = "0.3.0"

var (
	configPath string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "exiled-search",
		Short:         "Fill the Path of Exile 2 trade search from copied item text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		parseCmd(),
		validateCmd(),
		searchCmd(),
		daemonCmd(),
		sendCmd(),
		uiCmd(),
		historyCmd(),
		bindCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what every command shares: logger, config and whatever was opened
// along the way.
type env struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logger.Logger
	cfg    *config.Config

	mu      sync.Mutex
	closers []func() error
}

// setup loads config and builds the logger. extra writers receive log
// output too (the ui log panel).
func setup(console bool, extra ...io.Writer) (*env, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	// stderr only until the configured level is known
	bootLevel := zerolog.WarnLevel
	if debug {
		bootLevel = zerolog.DebugLevel
	}
	boot, err := logger.NewLogger(logger.WithLevel(bootLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.FindConfig(configPath, boot)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if !debug {
		level = logger.ParseLevel(cfg.GetLogLevel())
	}

	opts := []logger.Option{logger.WithLevel(level), logger.WithDefaultFile()}
	if console {
		opts = append(opts, logger.WithConsole())
	}
	for _, w := range extra {
		opts = append(opts, logger.WithWriter(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}))
	}
	log, err := logger.NewLogger(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Starting Exiled Search",
		"version", version,
		"pid", os.Getpid(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"debug", debug)
	log.Debug("Configuration loaded", "path", cfg.Path(), "trade_url", cfg.GetTradeURL())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &env{ctx: ctx, cancel: cancel, log: log, cfg: cfg}, nil
}

func (e *env) onClose(fn func() error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closers = append(e.closers, fn)
}

func (e *env) close() {
	e.cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Warn("Cleanup failed", "error", err)
		}
	}
	e.log.Close()
}

func (e *env) delays() *trade.DelaySelector {
	p, ok := trade.Profile(e.cfg.GetDelayProfile())
	if !ok {
		e.log.Warn("Unknown delay profile, using default", "profile", e.cfg.GetDelayProfile())
		p, _ = trade.Profile(trade.DefaultProfile)
	}
	return trade.NewDelaySelector(p)
}

func (e *env) openStore() (*storage.DB, error) {
	db, err := storage.Open(e.cfg.GetDBPath(), e.log)
	if err != nil {
		return nil, err
	}
	e.onClose(db.Close)
	return db, nil
}

// openEngine attaches to the trade tab. The browser lives as long as env.
func (e *env) openEngine(registry *stats.Registry, delays trade.DelaySource) (*trade.Engine, error) {
	sel, err := trade.SelectorsFromMap(e.cfg.GetSelectors())
	if err != nil {
		return nil, err
	}

	surf, err := rodsurface.Open(e.ctx, rodsurface.Config{
		TradeURL:   e.cfg.GetTradeURL(),
		BrowserURL: e.cfg.GetBrowserURL(),
		Headless:   e.cfg.GetHeadless(),
	}, e.log)
	if err != nil {
		return nil, err
	}
	e.onClose(surf.Close)

	return trade.NewEngine(surf, registry, delays,
		trade.WithSelectors(sel),
		trade.WithLogger(e.log)), nil
}

// pipeline wires the engine lazily so front ends start without a browser.
func (e *env) pipeline(store *storage.DB) *app.Pipeline {
	registry := stats.DefaultRegistry()
	delays := e.delays()

	searcher := app.NewLazySearcher(func() (app.Searcher, error) {
		engine, err := e.openEngine(registry, delays)
		if err != nil {
			return nil, err
		}
		return engine, nil
	})

	opts := []app.Option{
		app.WithLogger(e.log),
		app.WithNotifier(notify.NewNotifyService(e.cfg.GetNotifyCommand(), e.log)),
	}
	if store != nil {
		opts = append(opts, app.WithHistory(store))
	}
	if e.cfg.GetSound() {
		opts = append(opts, app.WithChime(sound.NewSoundNotifier(e.log)))
	}
	return app.NewPipeline(searcher, registry, delays, opts...)
}
