// Package store persists execution history, approval decisions, and
// guardian findings in a local sqlite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL DEFAULT '',
	task TEXT NOT NULL,
	status TEXT NOT NULL,
	answer TEXT,
	reason TEXT,
	steps_used INTEGER NOT NULL DEFAULT 0,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	spawn_depth INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_executions_agent ON executions(agent_id);

CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	execution_id TEXT NOT NULL,
	step_index INTEGER NOT NULL,
	thought TEXT,
	action TEXT,
	action_input TEXT,
	observation TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (execution_id) REFERENCES executions(id)
);
CREATE INDEX IF NOT EXISTS idx_steps_execution ON steps(execution_id);

CREATE TABLE IF NOT EXISTS approvals (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	args_summary TEXT,
	user_id TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS guardian_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guardian_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail TEXT,
	status TEXT NOT NULL DEFAULT 'open',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_guardian_items_status ON guardian_items(status);
`

// Store wraps the sqlite database. All writes are best-effort from the
// caller's perspective; history must never fail a run.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExecutionRecord is one persisted run.
type ExecutionRecord struct {
	ID         string
	AgentID    string
	Task       string
	Status     string
	Answer     string
	Reason     string
	StepsUsed  int
	TokensUsed int
	SpawnDepth int
	CreatedAt  time.Time
}

// StepRecord is one persisted loop iteration.
type StepRecord struct {
	ExecutionID string
	Index       int
	Thought     string
	Action      string
	ActionInput map[string]any
	Observation string
	TokensUsed  int
}

// SaveExecution writes one completed run and its steps in a single
// transaction.
func (s *Store) SaveExecution(rec ExecutionRecord, steps []StepRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO executions
		(id, agent_id, task, status, answer, reason, steps_used, tokens_used, spawn_depth)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AgentID, rec.Task, rec.Status, rec.Answer, rec.Reason,
		rec.StepsUsed, rec.TokensUsed, rec.SpawnDepth)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}

	for _, st := range steps {
		input := ""
		if len(st.ActionInput) > 0 {
			if raw, merr := json.Marshal(st.ActionInput); merr == nil {
				input = string(raw)
			}
		}
		_, err = tx.Exec(`INSERT INTO steps
			(execution_id, step_index, thought, action, action_input, observation, tokens_used)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, st.Index, st.Thought, st.Action, input, st.Observation, st.TokensUsed)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", st.Index, err)
		}
	}
	return tx.Commit()
}

// GetExecution loads one run by ID.
func (s *Store) GetExecution(id string) (*ExecutionRecord, error) {
	row := s.db.QueryRow(`SELECT id, agent_id, task, status, answer, reason,
		steps_used, tokens_used, spawn_depth, created_at
		FROM executions WHERE id = ?`, id)
	var rec ExecutionRecord
	err := row.Scan(&rec.ID, &rec.AgentID, &rec.Task, &rec.Status, &rec.Answer,
		&rec.Reason, &rec.StepsUsed, &rec.TokensUsed, &rec.SpawnDepth, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentExecutions lists the newest runs, most recent first.
func (s *Store) RecentExecutions(limit int) ([]ExecutionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT id, agent_id, task, status, answer, reason,
		steps_used, tokens_used, spawn_depth, created_at
		FROM executions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExecutionRecord
	for rows.Next() {
		var rec ExecutionRecord
		if err := rows.Scan(&rec.ID, &rec.AgentID, &rec.Task, &rec.Status, &rec.Answer,
			&rec.Reason, &rec.StepsUsed, &rec.TokensUsed, &rec.SpawnDepth, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertApproval records a new pending approval request.
func (s *Store) InsertApproval(id, tool, argsSummary, userID string) error {
	_, err := s.db.Exec(`INSERT INTO approvals (id, tool, args_summary, user_id)
		VALUES (?, ?, ?, ?)`, id, tool, argsSummary, userID)
	return err
}

// UpdateApprovalStatus resolves an approval request.
func (s *Store) UpdateApprovalStatus(id, status string) error {
	_, err := s.db.Exec(`UPDATE approvals
		SET status = ?, resolved_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// GuardianItem is one persisted guardian finding.
type GuardianItem struct {
	ID         int64
	GuardianID string
	Outcome    string
	Detail     string
	Status     string
	CreatedAt  time.Time
}

// InsertGuardianItem records a guardian finding as an open work item.
func (s *Store) InsertGuardianItem(guardianID, outcome, detail string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO guardian_items (guardian_id, outcome, detail)
		VALUES (?, ?, ?)`, guardianID, outcome, detail)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// OpenGuardianItems lists unresolved guardian findings.
func (s *Store) OpenGuardianItems() ([]GuardianItem, error) {
	rows, err := s.db.Query(`SELECT id, guardian_id, outcome, detail, status, created_at
		FROM guardian_items WHERE status = 'open' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GuardianItem
	for rows.Next() {
		var it GuardianItem
		if err := rows.Scan(&it.ID, &it.GuardianID, &it.Outcome, &it.Detail, &it.Status, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ResolveGuardianItem closes a work item.
func (s *Store) ResolveGuardianItem(id int64) error {
	_, err := s.db.Exec(`UPDATE guardian_items
		SET status = 'resolved', resolved_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
