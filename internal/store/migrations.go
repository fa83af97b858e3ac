package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create agents",
		SQL: `
			CREATE TABLE agents (
				id            TEXT PRIMARY KEY,
				position      INTEGER NOT NULL DEFAULT 0,
				name          TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				role          TEXT NOT NULL DEFAULT 'standard',
				capabilities  TEXT NOT NULL DEFAULT '[]',
				system_prompt TEXT NOT NULL DEFAULT '',
				rules         TEXT NOT NULL DEFAULT '[]',
				status        TEXT NOT NULL DEFAULT 'active',
				created_at    TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_agents_position ON agents (position, id);
		`,
	},
	{
		Version: 2,
		Name:    "create executions",
		SQL: `
			CREATE TABLE executions (
				id          TEXT PRIMARY KEY,
				agent_id    TEXT NOT NULL,
				task_id     TEXT NOT NULL,
				task_type   TEXT NOT NULL,
				success     INTEGER NOT NULL,
				error       TEXT NOT NULL DEFAULT '',
				latency_ms  REAL NOT NULL DEFAULT 0,
				cost_usd    REAL NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_executions_created ON executions (created_at);
			CREATE INDEX idx_executions_agent ON executions (agent_id, created_at);
		`,
	},
}
