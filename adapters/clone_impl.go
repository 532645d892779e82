package adapters

import (
	"context"
	"fmt"
	"strings"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/h"
)

// cloneImporter provisions a tenant schema by copying the default schema's
// DDL with pg_dump instead of replaying every migration, then seeds the
// migration-history rows so the new schema reports the right version.
type cloneImporter struct {
	cfg       f.Config
	cnx       f.Connection
	commander f.Commander
}

func (i cloneImporter) importSchema(ctx context.Context, tenant string) error {
	env := pgEnv(i.cnx.Config())
	database := i.cnx.Config().Database

	structure, err := i.commander.Run(ctx, env, "", "pg_dump",
		"--schema-only",
		"--no-owner",
		"--no-privileges",
		"--schema="+i.cfg.DefaultSchema,
		database,
	)
	if err != nil {
		return fmt.Errorf("failed to dump schema %s: %w", i.cfg.DefaultSchema, err)
	}
	patched := patchDump(string(structure), tenant, i.cfg.DefaultSchema)
	if err := i.cnx.Exec(ctx, patched); err != nil {
		return fmt.Errorf("failed to load cloned schema into %s: %w", tenant, err)
	}

	history, err := i.commander.Run(ctx, env, "", "pg_dump",
		"--data-only",
		"--inserts",
		"--table="+i.cfg.DefaultSchema+"."+i.cfg.ChangelogTable,
		database,
	)
	if err != nil {
		return fmt.Errorf("failed to dump migration history: %w", err)
	}
	historySQL := patchDump(string(history), tenant, i.cfg.DefaultSchema)
	if hasStatements(historySQL) {
		if err := i.cnx.Exec(ctx, historySQL); err != nil {
			return fmt.Errorf("failed to seed migration history for %s: %w", tenant, err)
		}
	}
	return nil
}

// patchDump makes raw pg_dump output safe to replay into a tenant schema: it
// strips every embedded search-path and session-timeout statement (they would
// override our own path management or fail on older servers) and prepends a
// single search-path directive targeting the new tenant first.
func patchDump(dump string, tenant string, defaultSchema string) string {
	out := []string{fmt.Sprintf("SET search_path TO %s;", h.SearchPath(tenant, defaultSchema))}
	for _, line := range strings.Split(dump, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "SET search_path") ||
			strings.HasPrefix(trimmed, "SELECT pg_catalog.set_config('search_path'") ||
			strings.HasPrefix(trimmed, "SET statement_timeout") ||
			strings.HasPrefix(trimmed, "SET lock_timeout") ||
			strings.HasPrefix(trimmed, "SET idle_in_transaction_session_timeout") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// hasStatements reports whether patched dump output contains anything beyond
// the prepended search-path directive and comments.
func hasStatements(sql string) bool {
	lines := strings.Split(sql, "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return true
		}
	}
	return false
}

// pgEnv maps connection settings to the environment variables pg_dump reads.
// The commander passes them to the child process only.
func pgEnv(cfg f.ConnectionConfig) map[string]string {
	env := map[string]string{}
	if cfg.Host != "" {
		env["PGHOST"] = cfg.Host
	}
	if cfg.Port != "" {
		env["PGPORT"] = cfg.Port
	}
	if cfg.User != "" {
		env["PGUSER"] = cfg.User
	}
	if cfg.Password != "" {
		env["PGPASSWORD"] = cfg.Password
	}
	return env
}
