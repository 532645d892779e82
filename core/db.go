package f

import (
	"context"
	"database/sql"
)

// ConnectionConfig is the subset of connection settings the clone strategy
// needs to hand to pg_dump.
type ConnectionConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Connection is the narrow contract this package consumes from the host ORM
// and connection layer. The bun-backed implementation lives in adapters.
type Connection interface {
	Exec(ctx context.Context, query string, args ...any) error
	SetSearchPath(ctx context.Context, schemas ...string) error
	SearchPath(ctx context.Context) (string, error)
	SchemaExists(ctx context.Context, schema string) (bool, error)
	CreateSchema(ctx context.Context, schema string) error
	DropSchema(ctx context.Context, schema string) error
	// DeleteWhere removes every row of table whose column equals value and
	// reports how many rows went away. The single-schema drop is built on it.
	DeleteWhere(ctx context.Context, table string, column string, value string) (int64, error)
	Config() ConnectionConfig
	// SQLDB exposes the raw handle for the migration runner.
	SQLDB() *sql.DB
	Dialect() string
	Close() error
}

const DefaultTenantColumn = "tenant_id"

// Model is the entity metadata contract: enough to locate a table and, for
// tenant-scoped models, the column rows are scoped by.
type Model interface {
	TableName() string
}

type tenantColumnModel interface {
	TenantColumn() string
}

// TenantColumn returns the model's scoping column, defaulting to tenant_id.
func TenantColumn(m Model) string {
	if tc, ok := m.(tenantColumnModel); ok {
		return tc.TenantColumn()
	}
	return DefaultTenantColumn
}
