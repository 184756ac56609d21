// Package ledger provides SQLite-backed persistence for finalized cost usage
// records. The estimator forgets a task's usage the moment EndTracking pops
// it; the ledger is the caller-side store that keeps those records for daily
// and per-model reporting.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eunice-ai/eunice/cost"
)

// Ledger persists finalized usage records to a SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open creates (or opens) the ledger database at dbPath and runs migrations.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	// WAL keeps readers unblocked while the single writer appends.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error { return l.db.Close() }

// migrate runs idempotent schema migrations.
func (l *Ledger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_records (
		task_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		tokens_used INTEGER NOT NULL,
		cost_usd REAL NOT NULL,
		provider_breakdown TEXT NOT NULL,
		agent_breakdown TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_session ON usage_records(session_id);
	CREATE INDEX IF NOT EXISTS idx_usage_end_time ON usage_records(end_time);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Append persists one finalized usage record. The record must already have
// EndTime set (i.e. come from EndTracking). Re-appending a task id fails on
// the primary key, surfacing task-id reuse instead of silently merging.
func (l *Ledger) Append(ctx context.Context, u *cost.Usage) error {
	if u == nil {
		return fmt.Errorf("nil usage record")
	}
	if u.EndTime.IsZero() {
		return fmt.Errorf("usage record for task %s is not finalized", u.TaskID)
	}

	providers, err := json.Marshal(u.ProviderBreakdown)
	if err != nil {
		return fmt.Errorf("marshal provider breakdown: %w", err)
	}
	agents, err := json.Marshal(u.AgentBreakdown)
	if err != nil {
		return fmt.Errorf("marshal agent breakdown: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO usage_records
			(task_id, session_id, start_time, end_time, tokens_used, cost_usd, provider_breakdown, agent_breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.TaskID, u.SessionID, u.StartTime.UTC(), u.EndTime.UTC(),
		u.TokensUsed, u.CostUSD, string(providers), string(agents),
	)
	if err != nil {
		return fmt.Errorf("append usage record: %w", err)
	}
	return nil
}

// SessionTotal returns the persisted token and dollar totals for a session.
func (l *Ledger) SessionTotal(ctx context.Context, sessionID string) (cost.Bucket, error) {
	var b cost.Bucket
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(tokens_used), 0), COALESCE(SUM(cost_usd), 0)
		FROM usage_records WHERE session_id = ?`, sessionID,
	).Scan(&b.Tokens, &b.CostUSD)
	if err != nil {
		return cost.Bucket{}, fmt.Errorf("session total: %w", err)
	}
	return b, nil
}

// DailyTotals returns per-day rollups for the most recent days, newest first.
func (l *Ledger) DailyTotals(ctx context.Context, days int) ([]cost.DailyTotal, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := l.db.QueryContext(ctx, `
		SELECT date(end_time), COALESCE(SUM(tokens_used), 0), COALESCE(SUM(cost_usd), 0), COUNT(*)
		FROM usage_records
		WHERE end_time >= ?
		GROUP BY date(end_time)
		ORDER BY date(end_time) DESC`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var out []cost.DailyTotal
	for rows.Next() {
		var d cost.DailyTotal
		if err := rows.Scan(&d.Date, &d.Tokens, &d.CostUSD, &d.Tasks); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Record is one persisted usage row with its breakdowns decoded.
type Record struct {
	cost.Usage
}

// Session returns all persisted records for a session, oldest first.
func (l *Ledger) Session(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT task_id, session_id, start_time, end_time, tokens_used, cost_usd, provider_breakdown, agent_breakdown
		FROM usage_records WHERE session_id = ? ORDER BY end_time ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var providers, agents string
		if err := rows.Scan(&r.TaskID, &r.SessionID, &r.StartTime, &r.EndTime,
			&r.TokensUsed, &r.CostUSD, &providers, &agents); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		if err := json.Unmarshal([]byte(providers), &r.ProviderBreakdown); err != nil {
			return nil, fmt.Errorf("decode provider breakdown: %w", err)
		}
		if err := json.Unmarshal([]byte(agents), &r.AgentBreakdown); err != nil {
			return nil, fmt.Errorf("decode agent breakdown: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
