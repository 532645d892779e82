package adapters

import (
	"context"

	f "github.com/Shopmatic/apartment/core"
)

// noopAdapter is the disabled strategy: every operation is an identity.
type noopAdapter struct {
	cfg f.Config
}

func newNoopAdapter(cfg f.Config) *noopAdapter {
	return &noopAdapter{cfg: cfg}
}

func (a *noopAdapter) Current() string {
	return a.cfg.DefaultSchema
}

func (a *noopAdapter) SwitchTo(ctx context.Context, tenant string) error {
	return nil
}

func (a *noopAdapter) Reset(ctx context.Context) error {
	return nil
}

func (a *noopAdapter) Switch(ctx context.Context, tenant string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (a *noopAdapter) Create(ctx context.Context, tenant string) error {
	return nil
}

func (a *noopAdapter) Drop(ctx context.Context, tenant string) error {
	return nil
}

func (a *noopAdapter) ProcessExcludedModel(ctx context.Context, m f.Model) error {
	return nil
}

func (a *noopAdapter) TableLocation(m f.Model) string {
	return a.cfg.DefaultSchema + "." + m.TableName()
}
