package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/agentdeck/internal/domain"
)

// RecentErrorLimit caps the errors returned with the dashboard.
const RecentErrorLimit = 20

// Execution is one recorded task run.
type Execution struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	TaskID    string    `json:"taskId"`
	TaskType  string    `json:"taskType"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	LatencyMs float64   `json:"latencyMs"`
	CostUSD   float64   `json:"costUsd"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExecutionStore records task runs and rolls them up for the dashboard.
type ExecutionStore struct {
	db  *DB
	now func() time.Time
}

// NewExecutionStore creates an execution store using the given database.
func NewExecutionStore(db *DB) *ExecutionStore {
	return &ExecutionStore{db: db, now: time.Now}
}

// Record stores an execution, filling in ID and CreatedAt when unset.
func (s *ExecutionStore) Record(ctx context.Context, e *Execution) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	success := 0
	if e.Success {
		success = 1
	}
	_, err := s.db.sql.ExecContext(ctx, `
		INSERT INTO executions (id, agent_id, task_id, task_type, success, error, latency_ms, cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AgentID, e.TaskID, e.TaskType, success, e.Error, e.LatencyMs, e.CostUSD, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("recording execution: %w", err)
	}
	return nil
}

// Dashboard rolls up executions from the trailing window. Recent errors are
// newest first and capped at RecentErrorLimit.
func (s *ExecutionStore) Dashboard(ctx context.Context, window time.Duration) (domain.DashboardMetrics, error) {
	hours := int(window / time.Hour)
	m := domain.DashboardMetrics{
		WindowHours:  hours,
		ByAgent:      map[string]domain.MetricsSummary{},
		RecentErrors: []domain.RecentError{},
	}
	since := formatTime(s.now().Add(-window))

	total, err := s.summary(ctx, `WHERE created_at >= ?`, since)
	if err != nil {
		return m, err
	}
	m.MetricsSummary = total

	rows, err := s.db.sql.QueryContext(ctx, `
		SELECT agent_id, COUNT(*), COALESCE(SUM(success), 0), COALESCE(AVG(latency_ms), 0), COALESCE(SUM(cost_usd), 0)
		FROM executions WHERE created_at >= ?
		GROUP BY agent_id`, since)
	if err != nil {
		return m, fmt.Errorf("per-agent rollup: %w", err)
	}
	for rows.Next() {
		var agent string
		var count, ok int64
		var latency, cost float64
		if err := rows.Scan(&agent, &count, &ok, &latency, &cost); err != nil {
			rows.Close()
			return m, err
		}
		m.ByAgent[agent] = summarize(count, ok, latency, cost)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return m, err
	}

	rows, err = s.db.sql.QueryContext(ctx, `
		SELECT agent_id, task_type, error, created_at
		FROM executions WHERE success = 0 AND created_at >= ?
		ORDER BY created_at DESC LIMIT ?`, since, RecentErrorLimit)
	if err != nil {
		return m, fmt.Errorf("recent errors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var re domain.RecentError
		var created string
		if err := rows.Scan(&re.Agent, &re.TaskType, &re.Error, &created); err != nil {
			return m, err
		}
		re.Timestamp = parseTime(created)
		m.RecentErrors = append(m.RecentErrors, re)
	}
	return m, rows.Err()
}

func (s *ExecutionStore) summary(ctx context.Context, where string, args ...any) (domain.MetricsSummary, error) {
	var count, ok int64
	var latency, cost float64
	err := s.db.sql.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(AVG(latency_ms), 0), COALESCE(SUM(cost_usd), 0)
		FROM executions `+where, args...).Scan(&count, &ok, &latency, &cost)
	if err != nil {
		return domain.MetricsSummary{}, fmt.Errorf("aggregate rollup: %w", err)
	}
	return summarize(count, ok, latency, cost), nil
}

func summarize(count, ok int64, latency, cost float64) domain.MetricsSummary {
	s := domain.MetricsSummary{TotalExecutions: count, AvgLatencyMs: latency, TotalCostUSD: cost}
	if count > 0 {
		s.SuccessRate = float64(ok) / float64(count) * 100
	}
	return s
}

// Recent returns the newest executions, optionally for one agent.
func (s *ExecutionStore) Recent(ctx context.Context, agentID string, limit int) ([]Execution, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, agent_id, task_id, task_type, success, error, latency_ms, cost_usd, created_at FROM executions`
	args := []any{}
	if agentID != "" {
		query += ` WHERE agent_id = ?`
		args = append(args, agentID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}
	defer rows.Close()

	out := []Execution{}
	for rows.Next() {
		var e Execution
		var success int
		var created string
		if err := rows.Scan(&e.ID, &e.AgentID, &e.TaskID, &e.TaskType, &success, &e.Error, &e.LatencyMs, &e.CostUSD, &created); err != nil {
			return nil, err
		}
		e.Success = success == 1
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}
