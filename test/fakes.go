package test

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/h"
)

// ------------------------------------------------------------------------------------------------------------------
// FAKE CONNECTION
// ------------------------------------------------------------------------------------------------------------------

type Delete struct {
	Table  string
	Column string
	Value  string
}

// FakeConnection is an in-memory stand-in for the bun-backed connection. It
// tracks existing schemas and the active search path, and records every
// statement so tests can assert on what would have hit the database.
type FakeConnection struct {
	mu         sync.Mutex
	schemas    map[string]bool
	searchPath []string

	ExecLog     []string
	PathHistory [][]string
	Deletes     []Delete
	Cfg         f.ConnectionConfig

	ExecErr         error
	ExecErrContains string
	SchemaExistsErr error
	DropSchemaErr   error
	DeleteErr       error
}

func NewFakeConnection(schemas ...string) *FakeConnection {
	existing := map[string]bool{"public": true}
	for _, schema := range schemas {
		existing[schema] = true
	}
	return &FakeConnection{
		schemas: existing,
		Cfg: f.ConnectionConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "app",
			Password: "secret",
			Database: "app_test",
		},
	}
}

func (c *FakeConnection) Exec(ctx context.Context, query string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExecLog = append(c.ExecLog, query)
	if c.ExecErr != nil && (c.ExecErrContains == "" || strings.Contains(query, c.ExecErrContains)) {
		return c.ExecErr
	}
	return nil
}

func (c *FakeConnection) SetSearchPath(ctx context.Context, schemas ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchPath = append([]string{}, schemas...)
	c.PathHistory = append(c.PathHistory, c.searchPath)
	return nil
}

func (c *FakeConnection) SearchPath(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return h.SearchPath(c.searchPath...), nil
}

func (c *FakeConnection) SchemaExists(ctx context.Context, schema string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SchemaExistsErr != nil {
		return false, c.SchemaExistsErr
	}
	return c.schemas[schema], nil
}

func (c *FakeConnection) CreateSchema(ctx context.Context, schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExecLog = append(c.ExecLog, "CREATE SCHEMA "+h.QuoteIdent(schema))
	c.schemas[schema] = true
	return nil
}

func (c *FakeConnection) DropSchema(ctx context.Context, schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DropSchemaErr != nil {
		return c.DropSchemaErr
	}
	c.ExecLog = append(c.ExecLog, "DROP SCHEMA "+h.QuoteIdent(schema)+" CASCADE")
	delete(c.schemas, schema)
	return nil
}

func (c *FakeConnection) DeleteWhere(ctx context.Context, table string, column string, value string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.DeleteErr != nil {
		return 0, c.DeleteErr
	}
	c.Deletes = append(c.Deletes, Delete{Table: table, Column: column, Value: value})
	return 1, nil
}

func (c *FakeConnection) Config() f.ConnectionConfig { return c.Cfg }
func (c *FakeConnection) SQLDB() *sql.DB             { return nil }
func (c *FakeConnection) Dialect() string            { return "postgres" }
func (c *FakeConnection) Close() error               { return nil }

func (c *FakeConnection) HasSchema(schema string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schemas[schema]
}

func (c *FakeConnection) CurrentSearchPath() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.searchPath...)
}

// ------------------------------------------------------------------------------------------------------------------
// FAKE COMMANDER
// ------------------------------------------------------------------------------------------------------------------

type CommanderCall struct {
	Env   map[string]string
	Stdin string
	Name  string
	Args  []string
}

// FakeCommander returns canned output per call, in order, so the clone
// strategy can be tested without a real pg_dump binary.
type FakeCommander struct {
	mu      sync.Mutex
	Outputs []string
	Err     error
	Calls   []CommanderCall
}

func (c *FakeCommander) Run(ctx context.Context, env map[string]string, stdin string, name string, args ...string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, CommanderCall{Env: env, Stdin: stdin, Name: name, Args: args})
	if c.Err != nil {
		return nil, c.Err
	}
	if len(c.Outputs) == 0 {
		return []byte{}, nil
	}
	out := c.Outputs[0]
	c.Outputs = c.Outputs[1:]
	return []byte(out), nil
}

// ------------------------------------------------------------------------------------------------------------------
// FAKE MIGRATOR
// ------------------------------------------------------------------------------------------------------------------

type MigratorCall struct {
	Op      string
	Schema  string
	Version int64
	Steps   int
}

type FakeMigrator struct {
	mu       sync.Mutex
	Calls    []MigratorCall
	Err      error
	FailOnce map[string]error // schema -> error consumed on first call
}

func (m *FakeMigrator) record(op string, schema string, version int64, steps int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailOnce[schema]; ok {
		delete(m.FailOnce, schema)
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	m.Calls = append(m.Calls, MigratorCall{Op: op, Schema: schema, Version: version, Steps: steps})
	return nil
}

func (m *FakeMigrator) Up(ctx context.Context, cnx f.Connection, schema string) error {
	return m.record("up", schema, 0, 0)
}

func (m *FakeMigrator) UpTo(ctx context.Context, cnx f.Connection, schema string, version int64) error {
	return m.record("up-to", schema, version, 0)
}

func (m *FakeMigrator) DownTo(ctx context.Context, cnx f.Connection, schema string, version int64) error {
	return m.record("down-to", schema, version, 0)
}

func (m *FakeMigrator) Rollback(ctx context.Context, cnx f.Connection, schema string, steps int) error {
	return m.record("rollback", schema, 0, steps)
}

func (m *FakeMigrator) Redo(ctx context.Context, cnx f.Connection, schema string) error {
	return m.record("redo", schema, 0, 0)
}

func (m *FakeMigrator) Seed(ctx context.Context, cnx f.Connection, schema string) error {
	return m.record("seed", schema, 0, 0)
}

func (m *FakeMigrator) Version(ctx context.Context, cnx f.Connection, schema string) (int64, error) {
	if err := m.record("version", schema, 0, 0); err != nil {
		return 0, err
	}
	return 1, nil
}

// CallsFor returns the recorded operations for one schema.
func (m *FakeMigrator) CallsFor(schema string) []MigratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []MigratorCall{}
	for _, call := range m.Calls {
		if call.Schema == schema {
			out = append(out, call)
		}
	}
	return out
}

// ------------------------------------------------------------------------------------------------------------------
// FAKE REGISTRY
// ------------------------------------------------------------------------------------------------------------------

type FakeRegistry struct {
	List []string
	Err  error
}

func (r *FakeRegistry) Tenants(ctx context.Context) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.List, nil
}
