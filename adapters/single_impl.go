package adapters

import (
	"context"
	"sync"

	f "github.com/Shopmatic/apartment/core"
	apterrors "github.com/Shopmatic/apartment/errors"
	"github.com/Shopmatic/apartment/h"
	"github.com/Shopmatic/apartment/log"
)

// singleSchemaAdapter degrades tenancy to one shared schema scoped by a
// tenant column. Switching only moves an in-memory identifier; no schema
// objects are ever touched.
type singleSchemaAdapter struct {
	cfg f.Config

	mu      sync.Mutex
	current string
	cnx     f.Connection
}

func newSingleSchemaAdapter(cfg f.Config, cnx f.Connection) *singleSchemaAdapter {
	return &singleSchemaAdapter{cfg: cfg, cnx: cnx}
}

func (a *singleSchemaAdapter) Current() string {
	if a.cfg.TenantsDisabled {
		return f.DisabledSentinel
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == "" {
		return a.cfg.DefaultSchema
	}
	return a.cfg.ResolveTenant(a.current)
}

func (a *singleSchemaAdapter) SwitchTo(ctx context.Context, tenant string) error {
	if tenant == "" {
		return a.Reset(ctx)
	}
	from := a.Current()
	runHooks(a.cfg.BeforeSwitch, from, tenant)
	a.mu.Lock()
	a.current = a.cfg.DecorateTenant(tenant)
	a.mu.Unlock()
	runHooks(a.cfg.AfterSwitch, from, tenant)
	return nil
}

func (a *singleSchemaAdapter) Reset(ctx context.Context) error {
	a.mu.Lock()
	a.current = ""
	a.mu.Unlock()
	return nil
}

func (a *singleSchemaAdapter) Switch(ctx context.Context, tenant string, fn func(ctx context.Context) error) (err error) {
	a.mu.Lock()
	prior := a.current
	a.mu.Unlock()

	if err = a.SwitchTo(ctx, tenant); err != nil {
		return err
	}
	defer func() {
		a.mu.Lock()
		a.current = prior
		a.mu.Unlock()
	}()
	return fn(ctx)
}

// Create is a no-op: the shared structure already exists.
func (a *singleSchemaAdapter) Create(ctx context.Context, tenant string) error {
	return nil
}

// Drop deletes every row belonging to the tenant across all registered
// tenant-scoped models, inside a switch so scoping resolves correctly.
// Children (registered last) are deleted before their parents. Rows carry the
// stored tenant id (the decorator output), so that is the delete filter; the
// resolver only shapes what Current reports.
func (a *singleSchemaAdapter) Drop(ctx context.Context, tenant string) error {
	if len(a.cfg.Tenants) > 0 && !h.ContainsString(a.cfg.Tenants, tenant) {
		return apterrors.TenantNotFound(tenant, "")
	}
	return a.Switch(ctx, tenant, func(ctx context.Context) error {
		a.mu.Lock()
		value := a.current
		a.mu.Unlock()
		for i := len(a.cfg.Models) - 1; i >= 0; i-- {
			model := a.cfg.Models[i]
			rows, err := a.cnx.DeleteWhere(ctx, model.TableName(), f.TenantColumn(model), value)
			if err != nil {
				return apterrors.DropTenant(tenant, err)
			}
			log.Tenant(tenant).Debugf("deleted %d rows from %s", rows, model.TableName())
		}
		return nil
	})
}

func (a *singleSchemaAdapter) ProcessExcludedModel(ctx context.Context, m f.Model) error {
	return nil
}

func (a *singleSchemaAdapter) TableLocation(m f.Model) string {
	return a.cfg.DefaultSchema + "." + m.TableName()
}
