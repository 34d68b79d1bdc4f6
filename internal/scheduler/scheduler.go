// Package scheduler runs the periodic explanation sweep: every stored
// ticker is re-explained and the result appended to the audit log, so the
// trail stays current as upstream refreshes snapshots.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/engine"
	"SignalSentinel/internal/store"
)

// Scheduler manages the cron-driven sweep.
type Scheduler struct {
	cron   *cron.Cron
	log    zerolog.Logger
	engine *engine.Engine
	store  store.Store
}

// New creates a Scheduler.
func New(log zerolog.Logger, eng *engine.Engine, st store.Store) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		log:    log,
		engine: eng,
		store:  st,
	}
}

// Register schedules the sweep at the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("register sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunSweepNow executes the sweep immediately (manual trigger).
func (s *Scheduler) RunSweepNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	tickers, err := s.store.Tickers()
	if err != nil {
		s.log.Error().Err(err).Msg("sweep: list tickers")
		return
	}

	explained, unresolved := 0, 0
	for _, ticker := range tickers {
		snap, err := s.store.Snapshot(ticker)
		if err != nil {
			s.log.Error().Err(err).Str("ticker", ticker).Msg("sweep: load snapshot")
			continue
		}

		sig := s.engine.ExplainSignal(snap)
		dec := s.engine.ExplainDecision(snap, sig.Label)

		records := []store.ExplanationRecord{
			{Ticker: ticker, Classifier: "SIGNAL", Mode: string(sig.Mode),
				Label: sig.Label, Resolved: sig.Resolved, Narrative: sig.Narrative},
			{Ticker: ticker, Classifier: "DECISION", Mode: string(dec.Mode),
				Label: dec.Label, Resolved: dec.Resolved, Narrative: dec.Narrative},
		}
		for i := range records {
			if err := s.store.RecordExplanation(&records[i]); err != nil {
				s.log.Error().Err(err).Str("ticker", ticker).Msg("sweep: record explanation")
			}
		}

		explained++
		if !sig.Resolved || !dec.Resolved {
			unresolved++
		}
	}

	s.log.Info().Int("tickers", explained).Int("unresolved", unresolved).Msg("sweep complete")
}
