package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/h"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type connectionImpl struct {
	url     string
	dialect string
	db      *bun.DB
	cfg     f.ConnectionConfig
}

// NewConnection opens the single database connection every tenant lives on.
// postgres:// urls get the full schema feature set; sqlite:// urls are
// accepted for the single-schema strategy only.
func NewConnection(databaseUrl string) (f.Connection, error) {
	var (
		sqldb   *sql.DB
		db      *bun.DB
		dialect string
		cfg     f.ConnectionConfig
	)

	if strings.HasPrefix(databaseUrl, "postgres://") || strings.HasPrefix(databaseUrl, "postgresql://") {
		u, err := h.ParseUrl(databaseUrl)
		if err != nil {
			return nil, err
		}
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(databaseUrl)))
		db = bun.NewDB(sqldb, pgdialect.New())
		dialect = "postgres"
		port := u.Port
		if port == "" {
			port = "5432"
		}
		cfg = f.ConnectionConfig{
			Host:     u.Host,
			Port:     port,
			User:     u.User,
			Password: u.Password,
			Database: u.Database(),
		}
	} else if strings.HasPrefix(databaseUrl, "sqlite://") {
		dialect = "sqlite3"
		sqliteDSN := strings.Replace(databaseUrl, "sqlite://", "", 1)
		var err error
		sqldb, err = sql.Open(sqliteshim.ShimName, sqliteDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %v", err)
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
		cfg = f.ConnectionConfig{Database: sqliteDSN}
	} else {
		return nil, fmt.Errorf("unsupported database url: %s", databaseUrl)
	}

	return &connectionImpl{
		url:     databaseUrl,
		dialect: dialect,
		db:      db,
		cfg:     cfg,
	}, nil
}

func (t *connectionImpl) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.db.ExecContext(ctx, query, args...)
	return err
}

func (t *connectionImpl) SetSearchPath(ctx context.Context, schemas ...string) error {
	if t.dialect != "postgres" {
		return nil
	}
	path := h.SearchPath(schemas...)
	if path == "" {
		return fmt.Errorf("refusing to set an empty search path")
	}
	if _, err := t.db.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", path)); err != nil {
		return fmt.Errorf("failed to set search path %s: %v", path, err)
	}
	return nil
}

func (t *connectionImpl) SearchPath(ctx context.Context) (string, error) {
	if t.dialect != "postgres" {
		return "", nil
	}
	var path string
	if err := t.db.NewRaw("SHOW search_path").Scan(ctx, &path); err != nil {
		return "", err
	}
	return path, nil
}

func (t *connectionImpl) SchemaExists(ctx context.Context, schema string) (bool, error) {
	if t.dialect != "postgres" {
		return false, fmt.Errorf("schemas are not supported on %s", t.dialect)
	}
	var exists bool
	err := t.db.NewRaw(
		"SELECT EXISTS(SELECT 1 FROM information_schema.schemata WHERE schema_name = ?)", schema,
	).Scan(ctx, &exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (t *connectionImpl) CreateSchema(ctx context.Context, schema string) error {
	if t.dialect != "postgres" {
		return fmt.Errorf("schemas are not supported on %s", t.dialect)
	}
	_, err := t.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", h.QuoteIdent(schema)))
	return err
}

func (t *connectionImpl) DropSchema(ctx context.Context, schema string) error {
	if t.dialect != "postgres" {
		return fmt.Errorf("schemas are not supported on %s", t.dialect)
	}
	// CASCADE so every contained object goes away atomically.
	_, err := t.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", h.QuoteIdent(schema)))
	return err
}

func (t *connectionImpl) DeleteWhere(ctx context.Context, table string, column string, value string) (int64, error) {
	res, err := t.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", h.QuoteIdent(table), h.QuoteIdent(column)), value)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *connectionImpl) Config() f.ConnectionConfig {
	return t.cfg
}

func (t *connectionImpl) SQLDB() *sql.DB {
	return t.db.DB
}

func (t *connectionImpl) Dialect() string {
	return t.dialect
}

func (t *connectionImpl) Close() error {
	return t.db.Close()
}
