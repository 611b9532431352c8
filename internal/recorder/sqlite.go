package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists valuation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while
	// the daemon writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS valuations (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			valuation_date TEXT NOT NULL,
			maturity_date  TEXT NOT NULL,
			window         INTEGER,
			sigma          REAL,
			rate           REAL,
			steps          INTEGER,
			paths          INTEGER,
			antithetic     INTEGER,
			payoff         TEXT,
			value          REAL,
			std_err        REAL,
			trigger_type   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_ts ON valuations(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

func (r *SQLiteRecorder) RecordValuation(rec *ValuationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	antithetic := 0
	if rec.Antithetic {
		antithetic = 1
	}
	_, err := r.db.Exec(`INSERT INTO valuations
		(timestamp, valuation_date, maturity_date, window, sigma, rate,
		 steps, paths, antithetic, payoff, value, std_err, trigger_type)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(),
		rec.ValuationDate.Format(dateLayout), rec.MaturityDate.Format(dateLayout),
		rec.Window, rec.Sigma, rec.Rate,
		rec.Steps, rec.Paths, antithetic, rec.Payoff,
		rec.Value, rec.StdErr, rec.Trigger,
	)
	return err
}

func (r *SQLiteRecorder) Recent(limit int) ([]ValuationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, valuation_date, maturity_date,
		window, sigma, rate, steps, paths, antithetic, payoff, value, std_err, trigger_type
		FROM valuations ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ValuationRecord
	for rows.Next() {
		var rec ValuationRecord
		var ts int64
		var valDate, matDate string
		var antithetic int
		if err := rows.Scan(&ts, &valDate, &matDate,
			&rec.Window, &rec.Sigma, &rec.Rate, &rec.Steps, &rec.Paths,
			&antithetic, &rec.Payoff, &rec.Value, &rec.StdErr, &rec.Trigger); err != nil {
			return nil, err
		}
		rec.RecordedAt = time.Unix(ts, 0)
		if d, err := time.Parse(dateLayout, valDate); err == nil {
			rec.ValuationDate = d
		}
		if d, err := time.Parse(dateLayout, matDate); err == nil {
			rec.MaturityDate = d
		}
		rec.Antithetic = antithetic != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
