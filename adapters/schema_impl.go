package adapters

import (
	"context"
	"fmt"
	"strings"
	"sync"

	f "github.com/Shopmatic/apartment/core"
	apterrors "github.com/Shopmatic/apartment/errors"
	"github.com/Shopmatic/apartment/h"
	"github.com/Shopmatic/apartment/log"
)

// schemaImporter populates the structure of a freshly created tenant schema.
// The plain strategy replays every migration; the clone strategy copies the
// default schema with pg_dump.
type schemaImporter interface {
	importSchema(ctx context.Context, tenant string) error
}

type schemaAdapter struct {
	cfg      f.Config
	cnx      f.Connection
	importer schemaImporter

	mu      sync.Mutex
	current string            // "" means no tenant selected
	pinned  map[string]string // excluded table -> schema it is pinned to
}

func newSchemaAdapter(cfg f.Config, cnx f.Connection, importer schemaImporter) *schemaAdapter {
	return &schemaAdapter{
		cfg:      cfg,
		cnx:      cnx,
		importer: importer,
		pinned:   map[string]string{},
	}
}

func (a *schemaAdapter) setup(ctx context.Context) error {
	for _, model := range a.cfg.ExcludedModels {
		if err := a.ProcessExcludedModel(ctx, model); err != nil {
			return err
		}
	}
	return a.Reset(ctx)
}

func (a *schemaAdapter) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == "" {
		return a.cfg.DefaultSchema
	}
	return a.current
}

func (a *schemaAdapter) SwitchTo(ctx context.Context, tenant string) error {
	if tenant == "" {
		return a.Reset(ctx)
	}
	from := a.Current()
	runHooks(a.cfg.BeforeSwitch, from, tenant)

	path := a.cfg.TenantSearchPath(tenant)
	exists, err := a.schemaExists(ctx, tenant)
	if err != nil || !exists {
		if err != nil {
			log.Tenant(tenant).Warnf("schema existence check failed: %v", err)
		}
		return apterrors.TenantNotFound(tenant, strings.Join(path, ", "))
	}
	if err := a.cnx.SetSearchPath(ctx, path...); err != nil {
		return fmt.Errorf("failed to switch to tenant %s: %v", tenant, err)
	}
	a.mu.Lock()
	a.current = tenant
	a.mu.Unlock()

	runHooks(a.cfg.AfterSwitch, from, tenant)
	return nil
}

func (a *schemaAdapter) Reset(ctx context.Context) error {
	if err := a.cnx.SetSearchPath(ctx, a.cfg.DefaultSearchPath()...); err != nil {
		return err
	}
	a.mu.Lock()
	a.current = ""
	a.mu.Unlock()
	return nil
}

func (a *schemaAdapter) Switch(ctx context.Context, tenant string, fn func(ctx context.Context) error) (err error) {
	a.mu.Lock()
	prior := a.current
	a.mu.Unlock()

	if err = a.SwitchTo(ctx, tenant); err != nil {
		return err
	}
	// The restore runs on every exit path, panics included.
	defer func() {
		var rerr error
		if prior == "" {
			rerr = a.Reset(ctx)
		} else {
			rerr = a.SwitchTo(ctx, prior)
		}
		if rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(ctx)
}

func (a *schemaAdapter) Create(ctx context.Context, tenant string) error {
	if !h.ValidIdent(tenant) {
		return fmt.Errorf("tenant name %q is not a valid schema identifier", tenant)
	}
	exists, err := a.schemaExists(ctx, tenant)
	if err != nil {
		return fmt.Errorf("failed to check tenant %s: %v", tenant, err)
	}
	if exists {
		return apterrors.TenantExists(tenant)
	}
	if err := a.cnx.CreateSchema(ctx, tenant); err != nil {
		return fmt.Errorf("failed to create schema for tenant %s: %v", tenant, err)
	}
	if err := a.Switch(ctx, tenant, func(ctx context.Context) error {
		return a.importer.importSchema(ctx, tenant)
	}); err != nil {
		return err
	}
	for _, model := range a.cfg.ExcludedModels {
		if err := a.ProcessExcludedModel(ctx, model); err != nil {
			return err
		}
	}
	log.Tenant(tenant).Info("tenant created")
	return nil
}

func (a *schemaAdapter) Drop(ctx context.Context, tenant string) error {
	exists, err := a.schemaExists(ctx, tenant)
	if err != nil {
		return apterrors.DropTenant(tenant, err)
	}
	if !exists {
		return apterrors.TenantNotFound(tenant, "")
	}
	if err := a.cnx.DropSchema(ctx, tenant); err != nil {
		return apterrors.DropTenant(tenant, err)
	}
	a.mu.Lock()
	wasActive := a.current == tenant
	a.mu.Unlock()
	if wasActive {
		if err := a.Reset(ctx); err != nil {
			return err
		}
	}
	log.Tenant(tenant).Info("tenant dropped")
	return nil
}

func (a *schemaAdapter) ProcessExcludedModel(ctx context.Context, m f.Model) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pinned[m.TableName()] = a.cfg.DefaultSchema
	return nil
}

func (a *schemaAdapter) TableLocation(m f.Model) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if schema, ok := a.pinned[m.TableName()]; ok {
		return schema + "." + m.TableName()
	}
	schema := a.current
	if schema == "" {
		schema = a.cfg.DefaultSchema
	}
	return schema + "." + m.TableName()
}

func (a *schemaAdapter) schemaExists(ctx context.Context, schema string) (bool, error) {
	if a.cfg.SchemaExists != nil {
		return a.cfg.SchemaExists(ctx, a.cnx, schema)
	}
	return a.cnx.SchemaExists(ctx, schema)
}

// migrationImporter replays every migration into the new schema.
type migrationImporter struct {
	cnx      f.Connection
	migrator f.Migrator
}

func (i migrationImporter) importSchema(ctx context.Context, tenant string) error {
	return i.migrator.Up(ctx, i.cnx, tenant)
}
