package f

import "context"

// Tenant is one registry entry. Only the id matters to the adapters; the rest
// is carried for callers that render tenant lists.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TenantList struct {
	Tenants []Tenant `json:"tenants"`
}

// Registry supplies the list of known tenant identifiers to the bulk runner.
type Registry interface {
	Tenants(ctx context.Context) ([]string, error)
}

// Migrator wraps the host migration runner, invoked once per tenant schema.
type Migrator interface {
	Up(ctx context.Context, cnx Connection, schema string) error
	UpTo(ctx context.Context, cnx Connection, schema string, version int64) error
	DownTo(ctx context.Context, cnx Connection, schema string, version int64) error
	Rollback(ctx context.Context, cnx Connection, schema string, steps int) error
	Redo(ctx context.Context, cnx Connection, schema string) error
	Version(ctx context.Context, cnx Connection, schema string) (int64, error)
	// Seed applies the SQL files of the configured seed directory without
	// recording versions, so seeds can be re-run.
	Seed(ctx context.Context, cnx Connection, schema string) error
}

// Commander is the command-execution port the clone strategy shells through.
// env entries are visible to the child process only; the parent environment
// is never touched, so credentials cannot leak past the call.
type Commander interface {
	Run(ctx context.Context, env map[string]string, stdin string, name string, args ...string) ([]byte, error)
}
