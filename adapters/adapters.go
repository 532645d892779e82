package adapters

import (
	"context"
	"fmt"

	f "github.com/Shopmatic/apartment/core"
)

// Options carries overridable ports for the adapter factory. Zero values get
// real implementations; tests inject fakes.
type Options struct {
	Migrator  f.Migrator
	Commander f.Commander
}

// New selects the tenancy strategy once, from configuration. Everything above
// this call only ever sees the f.Adapter contract.
func New(ctx context.Context, cfg f.Config, cnx f.Connection, opts Options) (f.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case f.StrategyDisabled:
		return newNoopAdapter(cfg), nil
	case f.StrategySingle:
		return newSingleSchemaAdapter(cfg, cnx), nil
	case f.StrategySchemas:
		migrator := opts.Migrator
		if migrator == nil {
			migrator = NewMigrator(cfg)
		}
		a := newSchemaAdapter(cfg, cnx, migrationImporter{cnx: cnx, migrator: migrator})
		if err := a.setup(ctx); err != nil {
			return nil, err
		}
		return a, nil
	case f.StrategyClone:
		commander := opts.Commander
		if commander == nil {
			commander = NewCommander()
		}
		a := newSchemaAdapter(cfg, cnx, cloneImporter{cfg: cfg, cnx: cnx, commander: commander})
		if err := a.setup(ctx); err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown tenancy strategy: %s", cfg.Strategy)
}

func runHooks(hooks []f.SwitchHook, from string, to string) {
	for _, hook := range hooks {
		hook(from, to)
	}
}
