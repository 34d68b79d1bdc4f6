package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// SQLiteStore persists snapshots and the explanation audit trail to a
// SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the sweep writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			ticker              TEXT PRIMARY KEY,
			updated             INTEGER NOT NULL,
			price               REAL,
			change_pct          REAL,
			volume_ratio        REAL,
			sma20               REAL,
			sma50               REAL,
			sma200              REAL,
			trend_state         TEXT,
			rsi                 REAL,
			macd_histogram      REAL,
			adx                 REAL,
			stochastic_k        REAL,
			divergence          TEXT,
			atr                 REAL,
			bollinger_percent_b REAL,
			support             REAL,
			resistance          REAL,
			target              REAL,
			risk_reward_quality REAL,
			ath_distance        REAL,
			fundamental_bucket  TEXT,
			volatility_regime   TEXT,
			patterns            TEXT,
			consensus_price     REAL,
			signal              TEXT,
			decision            TEXT,
			is_purchased        INTEGER,
			mode                TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS explanations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			ticker     TEXT,
			classifier TEXT,
			mode       TEXT,
			label      TEXT,
			resolved   INTEGER,
			narrative  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_explanations_ticker ON explanations(ticker, timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(snap *model.IndicatorSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO snapshots
		(ticker, updated, price, change_pct, volume_ratio,
		 sma20, sma50, sma200, trend_state,
		 rsi, macd_histogram, adx, stochastic_k, divergence,
		 atr, bollinger_percent_b, support, resistance, target, risk_reward_quality,
		 ath_distance, fundamental_bucket, volatility_regime, patterns, consensus_price,
		 signal, decision, is_purchased, mode)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.Ticker, time.Now().Unix(),
		toNull(snap.Price), toNull(snap.ChangePct), toNull(snap.VolumeRatio),
		toNull(snap.SMA20), toNull(snap.SMA50), toNull(snap.SMA200), snap.TrendState,
		toNull(snap.RSI), toNull(snap.MACDHistogram), toNull(snap.ADX), toNull(snap.StochasticK), snap.Divergence,
		toNull(snap.ATR), toNull(snap.BollingerPercentB), toNull(snap.Support), toNull(snap.Resistance),
		toNull(snap.Target), toNull(snap.RiskRewardQuality),
		toNull(snap.ATHDistance), snap.FundamentalBucket, snap.VolatilityRegime, snap.Patterns, toNull(snap.ConsensusPrice),
		snap.Signal, snap.Decision, boolToInt(snap.IsPurchased), string(snap.Mode),
	)
	return err
}

func (s *SQLiteStore) Snapshot(ticker string) (*model.IndicatorSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT
		ticker, price, change_pct, volume_ratio,
		sma20, sma50, sma200, trend_state,
		rsi, macd_histogram, adx, stochastic_k, divergence,
		atr, bollinger_percent_b, support, resistance, target, risk_reward_quality,
		ath_distance, fundamental_bucket, volatility_regime, patterns, consensus_price,
		signal, decision, is_purchased, mode
		FROM snapshots WHERE ticker = ?`, ticker)

	var snap model.IndicatorSnapshot
	var price, changePct, volumeRatio, sma20, sma50, sma200 sql.NullFloat64
	var rsi, macdHist, adx, stochK, atr, percentB sql.NullFloat64
	var support, resistance, target, rrQuality, athDist, consensus sql.NullFloat64
	var purchased int
	var mode string

	err := row.Scan(
		&snap.Ticker, &price, &changePct, &volumeRatio,
		&sma20, &sma50, &sma200, &snap.TrendState,
		&rsi, &macdHist, &adx, &stochK, &snap.Divergence,
		&atr, &percentB, &support, &resistance, &target, &rrQuality,
		&athDist, &snap.FundamentalBucket, &snap.VolatilityRegime, &snap.Patterns, &consensus,
		&snap.Signal, &snap.Decision, &purchased, &mode,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot %s: %w", ticker, err)
	}

	snap.Price = fromNull(price)
	snap.ChangePct = fromNull(changePct)
	snap.VolumeRatio = fromNull(volumeRatio)
	snap.SMA20 = fromNull(sma20)
	snap.SMA50 = fromNull(sma50)
	snap.SMA200 = fromNull(sma200)
	snap.RSI = fromNull(rsi)
	snap.MACDHistogram = fromNull(macdHist)
	snap.ADX = fromNull(adx)
	snap.StochasticK = fromNull(stochK)
	snap.ATR = fromNull(atr)
	snap.BollingerPercentB = fromNull(percentB)
	snap.Support = fromNull(support)
	snap.Resistance = fromNull(resistance)
	snap.Target = fromNull(target)
	snap.RiskRewardQuality = fromNull(rrQuality)
	snap.ATHDistance = fromNull(athDist)
	snap.ConsensusPrice = fromNull(consensus)
	snap.IsPurchased = purchased != 0
	snap.Mode = model.ParseMode(mode)

	return &snap, nil
}

func (s *SQLiteStore) Tickers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ticker FROM snapshots ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

func (s *SQLiteStore) RecordExplanation(rec *ExplanationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO explanations
		(timestamp, ticker, classifier, mode, label, resolved, narrative)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Ticker, rec.Classifier, rec.Mode,
		rec.Label, boolToInt(rec.Resolved), rec.Narrative,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

func toNull(f model.Float) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f.Value, Valid: f.Valid}
}

func fromNull(n sql.NullFloat64) model.Float {
	if !n.Valid {
		return model.Missing()
	}
	return model.F(n.Float64)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
