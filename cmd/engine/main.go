package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"SignalSentinel/internal/catalog"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/engine"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/scheduler"
	"SignalSentinel/internal/server"
	"SignalSentinel/internal/store"
)

func main() {
	var (
		cfgPath = flag.String("config", "configs/config.yaml", "path to config file")
		ticker  = flag.String("ticker", "", "explain a single ticker and exit")
		mode    = flag.String("mode", "", "override mode (trade|invest) for -ticker")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		log = log.Level(level)
	}

	// Catalogs are static; any defect fails startup, never an explain call.
	set, lints, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load rule catalogs")
	}
	for _, l := range lints {
		log.Warn().Str("finding", l.String()).Msg("catalog lint")
	}
	eng := engine.New(set)

	var st store.Store
	if cfg.Database.SQLitePath != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("sqlite unavailable, using in-memory store")
			st = store.NewMemoryStore()
		} else {
			st = sqlStore
		}
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	if *ticker != "" {
		runOnce(log, eng, st, *ticker, *mode)
		return
	}

	srv := server.New(server.Config{
		Log:         log,
		Engine:      eng,
		Store:       st,
		Port:        cfg.Server.Port,
		DefaultMode: model.ParseMode(cfg.Engine.DefaultMode),
	})

	var sched *scheduler.Scheduler
	if cfg.Sweep.Enabled {
		sched = scheduler.New(log, eng, st)
		if err := sched.Register(cfg.Sweep.Cron); err != nil {
			log.Fatal().Err(err).Msg("register sweep")
		}
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if sched != nil {
		sched.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// runOnce explains a single stored ticker to stdout.
func runOnce(log zerolog.Logger, eng *engine.Engine, st store.Store, ticker, modeOverride string) {
	snap, err := st.Snapshot(ticker)
	if err != nil {
		log.Fatal().Err(err).Str("ticker", ticker).Msg("load snapshot")
	}
	if modeOverride != "" {
		snap.Mode = model.ParseMode(modeOverride)
	}

	sig := eng.ExplainSignal(snap)
	dec := eng.ExplainDecision(snap, sig.Label)

	fmt.Printf("%s [%s]\n\n%s\n%s\n", snap.Ticker, snap.Mode, sig.Narrative, dec.Narrative)
}
