// Package history persists benchmark run summaries in sqlite and serves the
// leaderboard and per-model history views.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stellarlinkco/bias-bench/internal/config"
)

// DefaultSQLitePath is where runs land when storage is not configured.
const DefaultSQLitePath = "data/bias-bench.db"

const defaultLimit = 50

type Store struct {
	db *sql.DB
}

// Run is one persisted task evaluation.
type Run struct {
	ID                int64
	Model             string
	Provider          string
	Task              string
	Mode              string
	BiasScore         float64
	Accuracy          float64
	WeightedBiasScore float64
	Total             int
	Scored            int
	Skipped           int
	LatencyMs         int64
	EvalDate          time.Time
}

// Open builds a store from config: sqlite at the configured path, or an
// in-memory database for storage type "memory".
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("history: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "sqlite":
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewStore(path)
	case "memory":
		return NewStore(":memory:")
	default:
		return nil, fmt.Errorf("history: unsupported storage type %q", storageType)
	}
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("history: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("history: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("history: nil db")
	}

	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS bias_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model TEXT NOT NULL,
			provider TEXT NOT NULL,
			task TEXT NOT NULL,
			mode TEXT NOT NULL,
			bias_score REAL NOT NULL,
			accuracy REAL NOT NULL,
			weighted_bias_score REAL NOT NULL,
			total INTEGER NOT NULL,
			scored INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bias_runs_task ON bias_runs(task)`,
		`CREATE INDEX IF NOT EXISTS idx_bias_runs_model_task ON bias_runs(model, task)`,
		`CREATE INDEX IF NOT EXISTS idx_bias_runs_eval_date ON bias_runs(eval_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, run *Run) error {
	if s == nil || s.db == nil {
		return errors.New("history: nil store")
	}
	if ctx == nil {
		return errors.New("history: nil context")
	}
	if run == nil {
		return errors.New("history: nil run")
	}

	model := strings.TrimSpace(run.Model)
	provider := strings.TrimSpace(run.Provider)
	taskName := strings.TrimSpace(run.Task)
	if model == "" || provider == "" || taskName == "" {
		return errors.New("history: missing model/provider/task")
	}
	mode := strings.TrimSpace(run.Mode)

	evalDate := run.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bias_runs (
			model, provider, task, mode, bias_score, accuracy, weighted_bias_score,
			total, scored, skipped, latency_ms, eval_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, model, provider, taskName, mode, run.BiasScore, run.Accuracy, run.WeightedBiasScore,
		run.Total, run.Scored, run.Skipped, run.LatencyMs, evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	run.EvalDate = evalDate
	run.Model = model
	run.Provider = provider
	run.Task = taskName
	run.Mode = mode
	return nil
}

// Leaderboard ranks models on a task: nearest to the unbiased 50 first, then
// higher accuracy, then most recent.
func (s *Store) Leaderboard(ctx context.Context, taskName string, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: nil store")
	}
	if ctx == nil {
		return nil, errors.New("history: nil context")
	}
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return nil, errors.New("history: empty task")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, provider, task, mode, bias_score, accuracy, weighted_bias_score,
			total, scored, skipped, latency_ms, eval_date
		FROM bias_runs
		WHERE task = ?
		ORDER BY ABS(bias_score - 50.0) ASC, accuracy DESC, eval_date DESC
		LIMIT ?
	`, taskName, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (s *Store) ModelHistory(ctx context.Context, model, taskName string) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: nil store")
	}
	if ctx == nil {
		return nil, errors.New("history: nil context")
	}
	model = strings.TrimSpace(model)
	taskName = strings.TrimSpace(taskName)
	if model == "" || taskName == "" {
		return nil, errors.New("history: missing model/task")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, provider, task, mode, bias_score, accuracy, weighted_bias_score,
			total, scored, skipped, latency_ms, eval_date
		FROM bias_runs
		WHERE model = ? AND task = ?
		ORDER BY eval_date DESC
	`, model, taskName)
	if err != nil {
		return nil, fmt.Errorf("history: query model history: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var evalDateMS int64
		if err := rows.Scan(
			&r.ID,
			&r.Model,
			&r.Provider,
			&r.Task,
			&r.Mode,
			&r.BiasScore,
			&r.Accuracy,
			&r.WeightedBiasScore,
			&r.Total,
			&r.Scored,
			&r.Skipped,
			&r.LatencyMs,
			&evalDateMS,
		); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: scan rows: %w", err)
	}
	return out, nil
}
