package adapters

import (
	"context"
	"fmt"
	"strings"
	"testing"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/test"
)

const rawDump = `--
-- PostgreSQL database dump
--

SET statement_timeout = 0;
SET lock_timeout = 0;
SET idle_in_transaction_session_timeout = 0;
SELECT pg_catalog.set_config('search_path', '', false);
SET search_path = public, pg_catalog;

CREATE TABLE accounts (
    id bigint NOT NULL,
    name text
);
`

const rawHistoryDump = `--
-- Data for Name: database_changelog
--

SET search_path = public, pg_catalog;

INSERT INTO database_changelog (id, version_id, is_applied) VALUES (1, 20240101120000, true);
`

func TestPatchDump(t *testing.T) {
	assert := test.NewAssertions(t)

	patched := patchDump(rawDump, "acme", "public")
	lines := strings.Split(patched, "\n")

	// exactly one search-path statement, first, targeting the new tenant
	assert.Equals(lines[0], `SET search_path TO "acme", "public";`)
	for _, line := range lines[1:] {
		assert.NotContains(line, "search_path")
	}
	assert.NotContains(patched, "statement_timeout")
	assert.NotContains(patched, "lock_timeout")
	assert.NotContains(patched, "idle_in_transaction_session_timeout")
	assert.Contains(patched, "CREATE TABLE accounts")
}

func TestHasStatements(t *testing.T) {
	assert := test.NewAssertions(t)

	assert.True(hasStatements(patchDump(rawHistoryDump, "acme", "public")))
	assert.False(hasStatements(patchDump("--\n-- nothing here\n--\n", "acme", "public")))
}

func TestCloneImporter_ImportSchema(t *testing.T) {
	assert := test.NewAssertions(t)
	cnx := test.NewFakeConnection("acme")
	commander := &test.FakeCommander{Outputs: []string{rawDump, rawHistoryDump}}
	cfg := f.Config{
		Strategy:       f.StrategyClone,
		DefaultSchema:  "public",
		ChangelogTable: "database_changelog",
		WorkerCount:    1,
	}
	importer := cloneImporter{cfg: cfg, cnx: cnx, commander: commander}

	assert.Nil(importer.importSchema(context.Background(), "acme"))

	// one structure dump, one history dump
	assert.Len(commander.Calls, 2)
	structure := commander.Calls[0]
	assert.Equals(structure.Name, "pg_dump")
	assert.True(containsArg(structure.Args, "--schema-only"))
	assert.True(containsArg(structure.Args, "--no-owner"))
	assert.True(containsArg(structure.Args, "--schema=public"))
	history := commander.Calls[1]
	assert.True(containsArg(history.Args, "--data-only"))
	assert.True(containsArg(history.Args, "--table=public.database_changelog"))

	// credentials visible to the child only, taken from the connection config
	assert.Equals(structure.Env["PGPASSWORD"], "secret")
	assert.Equals(structure.Env["PGHOST"], "localhost")
	assert.Equals(structure.Env["PGUSER"], "app")

	// both batches were executed, each starting with the patched search path
	assert.Len(cnx.ExecLog, 2)
	for _, batch := range cnx.ExecLog {
		assert.True(strings.HasPrefix(batch, `SET search_path TO "acme", "public";`))
	}
	assert.Contains(cnx.ExecLog[1], "INSERT INTO database_changelog")
}

func TestCloneImporter_DumpFailure(t *testing.T) {
	assert := test.NewAssertions(t)
	cnx := test.NewFakeConnection("acme")
	commander := &test.FakeCommander{Err: fmt.Errorf("pg_dump: command not found")}
	cfg := f.Config{Strategy: f.StrategyClone, DefaultSchema: "public", ChangelogTable: "database_changelog", WorkerCount: 1}
	importer := cloneImporter{cfg: cfg, cnx: cnx, commander: commander}

	err := importer.importSchema(context.Background(), "acme")
	assert.NotNil(err)
	assert.Contains(err.Error(), "pg_dump")
	// nothing was executed against the database
	assert.Len(cnx.ExecLog, 0)
}

func TestCloneImporter_EmptyHistorySkipped(t *testing.T) {
	assert := test.NewAssertions(t)
	cnx := test.NewFakeConnection("acme")
	commander := &test.FakeCommander{Outputs: []string{rawDump, "--\n-- no rows\n--\n"}}
	cfg := f.Config{Strategy: f.StrategyClone, DefaultSchema: "public", ChangelogTable: "database_changelog", WorkerCount: 1}
	importer := cloneImporter{cfg: cfg, cnx: cnx, commander: commander}

	assert.Nil(importer.importSchema(context.Background(), "acme"))
	assert.Len(cnx.ExecLog, 1)
}

func TestPgEnv_SkipsEmptyValues(t *testing.T) {
	assert := test.NewAssertions(t)

	env := pgEnv(f.ConnectionConfig{Host: "db.local", User: "app"})
	assert.Equals(env, map[string]string{"PGHOST": "db.local", "PGUSER": "app"})
}

func containsArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
