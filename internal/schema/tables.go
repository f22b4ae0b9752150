package schema

// Table describes one table of the canonical per-tenant set. Every
// tenant schema carries the identical set; this file is the single
// source of truth for its shape, consumed by the provisioner and by
// repair tooling. DDL here uses the same {{schema}} placeholder as
// query templates and relies on IF NOT EXISTS throughout so provisioning
// is idempotent and safe to re-run against a partially created schema.
type Table struct {
	Name    string
	Create  string
	Indexes []string
}

// TenantTables is the canonical domain table set. Order matters only for
// foreign keys; each statement is independently idempotent.
var TenantTables = []Table{
	{
		Name: "clients",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS clients_active_idx ON {{schema}}.clients (active)`,
			`CREATE INDEX IF NOT EXISTS clients_name_idx ON {{schema}}.clients (name)`,
		},
	},
	{
		Name: "projects",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.projects (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open',
			priority TEXT NOT NULL DEFAULT 'medium',
			start_date DATE,
			due_date DATE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS projects_client_idx ON {{schema}}.projects (client_id)`,
			`CREATE INDEX IF NOT EXISTS projects_status_idx ON {{schema}}.projects (status) WHERE active`,
		},
	},
	{
		Name: "tasks",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'todo',
			priority TEXT NOT NULL DEFAULT 'medium',
			assignee TEXT NOT NULL DEFAULT '',
			due_date DATE,
			tags TEXT[] NOT NULL DEFAULT '{}',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS tasks_project_idx ON {{schema}}.tasks (project_id)`,
			`CREATE INDEX IF NOT EXISTS tasks_status_idx ON {{schema}}.tasks (status) WHERE active`,
		},
	},
	{
		Name: "transactions",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.transactions (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'EUR',
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS transactions_occurred_idx ON {{schema}}.transactions (occurred_at)`,
			`CREATE INDEX IF NOT EXISTS transactions_kind_idx ON {{schema}}.transactions (kind) WHERE active`,
		},
	},
	{
		Name: "invoices",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.invoices (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL DEFAULT '',
			number TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'EUR',
			status TEXT NOT NULL DEFAULT 'draft',
			issued_at TIMESTAMPTZ,
			due_at TIMESTAMPTZ,
			paid_at TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS invoices_status_idx ON {{schema}}.invoices (status) WHERE active`,
			`CREATE INDEX IF NOT EXISTS invoices_client_idx ON {{schema}}.invoices (client_id)`,
		},
	},
	{
		Name: "publications",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.publications (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			tags TEXT[] NOT NULL DEFAULT '{}',
			published_at TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS publications_status_idx ON {{schema}}.publications (status) WHERE active`,
		},
	},
	{
		Name: "notifications",
		Create: `CREATE TABLE IF NOT EXISTS {{schema}}.notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT 'info',
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			read BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS notifications_user_idx ON {{schema}}.notifications (user_id, read) WHERE active`,
		},
	},
}
