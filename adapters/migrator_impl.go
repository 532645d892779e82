package adapters

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/log"
	"github.com/pressly/goose/v3"
)

// goose keeps its dialect, base FS and table name in package globals, so
// concurrent per-tenant migrations must take turns here.
var gooseMu sync.Mutex

type migratorImpl struct {
	fsys    fs.FS
	dir     string
	seedDir string
	table   string
}

// NewMigrator wraps goose as the per-tenant migration runner. It assumes the
// caller has already switched the connection to the target schema; the schema
// argument on each operation is diagnostic.
func NewMigrator(cfg f.Config) f.Migrator {
	return &migratorImpl{
		fsys:    cfg.MigrationsFS,
		dir:     cfg.MigrationsDir,
		seedDir: cfg.SeedDir,
		table:   cfg.ChangelogTable,
	}
}

func (m *migratorImpl) prepare(cnx f.Connection) error {
	if m.fsys == nil {
		return fmt.Errorf("no migrations filesystem configured")
	}
	goose.SetBaseFS(m.fsys)
	goose.SetTableName(m.table)
	if err := goose.SetDialect(cnx.Dialect()); err != nil {
		return fmt.Errorf("failed to set goose dialect: %v", err)
	}
	return nil
}

func (m *migratorImpl) Up(ctx context.Context, cnx f.Connection, schema string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, cnx.SQLDB(), m.dir, goose.WithAllowMissing()); err != nil {
		return fmt.Errorf("failed to run migrations for %s: %w", schema, err)
	}
	log.Tenant(schema).Info("migrations completed")
	return nil
}

func (m *migratorImpl) UpTo(ctx context.Context, cnx f.Connection, schema string, version int64) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	if err := goose.UpToContext(ctx, cnx.SQLDB(), m.dir, version, goose.WithAllowMissing()); err != nil {
		return fmt.Errorf("failed to migrate %s up to %d: %w", schema, version, err)
	}
	return nil
}

func (m *migratorImpl) DownTo(ctx context.Context, cnx f.Connection, schema string, version int64) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	if err := goose.DownToContext(ctx, cnx.SQLDB(), m.dir, version); err != nil {
		return fmt.Errorf("failed to migrate %s down to %d: %w", schema, version, err)
	}
	return nil
}

func (m *migratorImpl) Rollback(ctx context.Context, cnx f.Connection, schema string, steps int) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, cnx.SQLDB(), m.dir); err != nil {
			return fmt.Errorf("failed to roll back %s: %w", schema, err)
		}
	}
	return nil
}

func (m *migratorImpl) Redo(ctx context.Context, cnx f.Connection, schema string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	if err := goose.RedoContext(ctx, cnx.SQLDB(), m.dir); err != nil {
		return fmt.Errorf("failed to redo last migration for %s: %w", schema, err)
	}
	return nil
}

func (m *migratorImpl) Seed(ctx context.Context, cnx f.Connection, schema string) error {
	if m.seedDir == "" {
		return fmt.Errorf("no seed directory configured")
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return err
	}
	// no-versioning: seed files are applied every run, never recorded
	if err := goose.UpContext(ctx, cnx.SQLDB(), m.seedDir, goose.WithNoVersioning()); err != nil {
		return fmt.Errorf("failed to seed %s: %w", schema, err)
	}
	log.Tenant(schema).Info("seed completed")
	return nil
}

func (m *migratorImpl) Version(ctx context.Context, cnx f.Connection, schema string) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := m.prepare(cnx); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, cnx.SQLDB())
}
