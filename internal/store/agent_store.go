package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// AgentStore persists the agent registry.
type AgentStore struct {
	db *DB
}

// NewAgentStore creates an agent store using the given database.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db}
}

const agentColumns = `id, name, description, role, capabilities, system_prompt, rules, status`

func scanAgent(row interface{ Scan(...any) error }) (domain.Agent, error) {
	var a domain.Agent
	var caps, rules string
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Role, &caps, &a.SystemPrompt, &rules, &a.Status); err != nil {
		return a, err
	}
	a.Capabilities = []string{}
	a.Rules = []string{}
	if err := json.Unmarshal([]byte(caps), &a.Capabilities); err != nil {
		return a, fmt.Errorf("decoding capabilities of %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(rules), &a.Rules); err != nil {
		return a, fmt.Errorf("decoding rules of %s: %w", a.ID, err)
	}
	return a, nil
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// List returns all agents in registry order.
func (s *AgentStore) List(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.sql.QueryContext(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	agents := []domain.Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// Get returns the agent with the given ID.
func (s *AgentStore) Get(ctx context.Context, id string) (domain.Agent, error) {
	a, err := scanAgent(s.db.sql.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("agent %q: %w", id, ErrNotFound)
	}
	return a, err
}

// Resolve finds an agent by ID, then by case-insensitive ID or name.
func (s *AgentStore) Resolve(ctx context.Context, ref string) (domain.Agent, error) {
	a, err := s.Get(ctx, ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return a, err
	}
	key := strings.TrimSpace(ref)
	a, err = scanAgent(s.db.sql.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents
		 WHERE lower(id) = lower(?) OR lower(name) = lower(?)
		 ORDER BY position LIMIT 1`, key, key))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("agent %q: %w", ref, ErrNotFound)
	}
	return a, err
}

// Upsert inserts or replaces an agent. New agents are appended to the end of
// the registry order.
func (s *AgentStore) Upsert(ctx context.Context, a domain.Agent) error {
	if a.ID == "" {
		return errors.New("agent id is required")
	}
	if a.Role == "" {
		a.Role = domain.RoleStandard
	}
	if a.Status == "" {
		a.Status = domain.AgentStatusActive
	}
	if a.Name == "" {
		a.Name = a.ID
	}

	now := formatTime(time.Now())
	_, err := s.db.sql.ExecContext(ctx, `
		INSERT INTO agents (id, position, name, description, role, capabilities, system_prompt, rules, status, created_at, updated_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM agents), ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			role = excluded.role,
			capabilities = excluded.capabilities,
			system_prompt = excluded.system_prompt,
			rules = excluded.rules,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		a.ID, a.Name, a.Description, a.Role, encodeList(a.Capabilities),
		a.SystemPrompt, encodeList(a.Rules), a.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting agent %s: %w", a.ID, err)
	}
	return nil
}

// UpdateConfig replaces an agent's system prompt and rules.
func (s *AgentStore) UpdateConfig(ctx context.Context, id string, cfg domain.AgentConfig) error {
	res, err := s.db.sql.ExecContext(ctx,
		`UPDATE agents SET system_prompt = ?, rules = ?, updated_at = ? WHERE id = ?`,
		cfg.SystemPrompt, encodeList(cfg.Rules), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating config of %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("agent %q: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of registered agents.
func (s *AgentStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&n)
	return n, err
}

// Seed inserts agents only when the registry is empty and reports how many
// were added.
func (s *AgentStore) Seed(ctx context.Context, agents []domain.Agent) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting agents: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	for _, a := range agents {
		if err := s.Upsert(ctx, a); err != nil {
			return 0, err
		}
	}
	s.db.log.Info().Int("count", len(agents)).Msg("seeded agent registry")
	return len(agents), nil
}
