// Package store persists optimization outcomes, per-task aggregates,
// analysis patterns, and weight-adjustment provenance in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hcm-labs/hcm/internal/memory"
	"github.com/hcm-labs/hcm/internal/weights"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS performance_records (
	record_id   TEXT PRIMARY KEY,
	task_type   TEXT NOT NULL,
	baseline    REAL NOT NULL,
	actual      REAL NOT NULL,
	ratio       REAL NOT NULL,
	efficiency  REAL NOT NULL,
	level       TEXT NOT NULL,
	composite   REAL NOT NULL,
	iteration   INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_task ON performance_records(task_type);
CREATE INDEX IF NOT EXISTS idx_records_created ON performance_records(created_at);

CREATE TABLE IF NOT EXISTS task_memory (
	task_type   TEXT PRIMARY KEY,
	best_ratio  REAL NOT NULL,
	avg_ratio   REAL NOT NULL,
	runs        INTEGER NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_patterns (
	pattern_key TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	analysis    TEXT NOT NULL,
	composite   REAL NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS weight_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id   TEXT,
	action      TEXT NOT NULL,
	reason      TEXT,
	profile_w   REAL NOT NULL,
	task_w      REAL NOT NULL,
	signal_w    REAL NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (record_id) REFERENCES performance_records(record_id)
);
`

// #endregion schema

// #region store-struct

// Store manages the optimizer's persistence in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// New opens a SQLite database and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for read-only inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region records

// AppendRecord persists one performance record and returns its ID.
func (s *Store) AppendRecord(rec memory.Record) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO performance_records
		 (record_id, task_type, baseline, actual, ratio, efficiency, level, composite, iteration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.TaskType, rec.Baseline, rec.Actual, rec.Ratio, rec.Efficiency,
		rec.Level, rec.Composite, rec.Iteration,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

// RecentRecords returns the newest records, newest first.
func (s *Store) RecentRecords(limit int) ([]memory.Record, error) {
	rows, err := s.db.Query(
		`SELECT task_type, baseline, actual, ratio, efficiency, level, composite, iteration, created_at
		 FROM performance_records ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []memory.Record
	for rows.Next() {
		var rec memory.Record
		var createdStr string
		if err := rows.Scan(&rec.TaskType, &rec.Baseline, &rec.Actual, &rec.Ratio,
			&rec.Efficiency, &rec.Level, &rec.Composite, &rec.Iteration, &createdStr); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneRecords keeps only the newest keep records.
func (s *Store) PruneRecords(keep int) error {
	_, err := s.db.Exec(
		`DELETE FROM performance_records WHERE record_id NOT IN (
			SELECT record_id FROM performance_records ORDER BY created_at DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	return nil
}

// CountRecords returns the number of retained performance records.
func (s *Store) CountRecords() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM performance_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// #endregion records

// #region task-memory

// UpsertTask writes the running aggregates for one task type.
func (s *Store) UpsertTask(taskType string, ts memory.TaskStats) error {
	_, err := s.db.Exec(
		`INSERT INTO task_memory (task_type, best_ratio, avg_ratio, runs, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(task_type) DO UPDATE SET
		   best_ratio = excluded.best_ratio,
		   avg_ratio  = excluded.avg_ratio,
		   runs       = excluded.runs,
		   updated_at = excluded.updated_at`,
		taskType, ts.BestRatio, ts.AvgRatio, ts.Runs,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert task %s: %w", taskType, err)
	}
	return nil
}

// LoadTasks reads every per-task aggregate row.
func (s *Store) LoadTasks() (map[string]memory.TaskStats, error) {
	rows, err := s.db.Query(`SELECT task_type, best_ratio, avg_ratio, runs FROM task_memory`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	tasks := make(map[string]memory.TaskStats)
	for rows.Next() {
		var taskType string
		var ts memory.TaskStats
		if err := rows.Scan(&taskType, &ts.BestRatio, &ts.AvgRatio, &ts.Runs); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks[taskType] = ts
	}
	return tasks, rows.Err()
}

// DecayedAverage computes a time-decay-weighted mean ratio for one task,
// half-life in hours. Recent outcomes dominate older ones.
func (s *Store) DecayedAverage(taskType string, halfLifeHours float64) (float64, error) {
	rows, err := s.db.Query(
		`SELECT ratio, created_at FROM performance_records WHERE task_type = ?`, taskType,
	)
	if err != nil {
		return 0, fmt.Errorf("decayed average: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	var weightedSum, weightTotal float64
	for rows.Next() {
		var ratio float64
		var createdStr string
		if err := rows.Scan(&ratio, &createdStr); err != nil {
			return 0, fmt.Errorf("scan ratio: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			continue
		}
		ageHours := now.Sub(created).Hours()
		w := math.Exp(-ageHours / halfLifeHours)
		weightedSum += ratio * w
		weightTotal += w
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if weightTotal == 0 {
		return 0, nil
	}
	return weightedSum / weightTotal, nil
}

// #endregion task-memory

// #region patterns

// PutPattern stores one serialized analysis entry.
func (s *Store) PutPattern(key, source, kind, analysisJSON string, composite float64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO analysis_patterns (pattern_key, source, kind, analysis, composite, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, source, kind, analysisJSON, composite,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put pattern %s: %w", key, err)
	}
	return nil
}

// CountPatterns returns the number of stored analysis entries.
func (s *Store) CountPatterns() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analysis_patterns`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patterns: %w", err)
	}
	return n, nil
}

// #endregion patterns

// #region weight-log

// LogWeights appends one weight-adjustment provenance row. recordID may be
// empty when the adjustment did not originate from a persisted record.
func (s *Store) LogWeights(recordID string, action, reason string, w weights.Weights) error {
	var recPtr interface{}
	if recordID != "" {
		recPtr = recordID
	}
	_, err := s.db.Exec(
		`INSERT INTO weight_log (record_id, action, reason, profile_w, task_w, signal_w, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recPtr, action, nullIfEmpty(reason), w.Profile, w.Task, w.Signal,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log weights: %w", err)
	}
	return nil
}

// WeightLogEntry is one provenance row read back for inspection.
type WeightLogEntry struct {
	Action    string
	Reason    string
	Weights   weights.Weights
	CreatedAt time.Time
}

// RecentWeightLog returns the newest provenance rows, newest first.
func (s *Store) RecentWeightLog(limit int) ([]WeightLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT action, reason, profile_w, task_w, signal_w, created_at
		 FROM weight_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list weight log: %w", err)
	}
	defer rows.Close()

	var entries []WeightLogEntry
	for rows.Next() {
		var e WeightLogEntry
		var reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.Action, &reason, &e.Weights.Profile, &e.Weights.Task,
			&e.Weights.Signal, &createdStr); err != nil {
			return nil, fmt.Errorf("scan weight log: %w", err)
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion weight-log

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
