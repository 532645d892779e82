package tasks

import (
	"context"
	"fmt"
	"time"

	f "github.com/Shopmatic/apartment/core"
	apterrors "github.com/Shopmatic/apartment/errors"
	"github.com/Shopmatic/apartment/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Operation string

const (
	OpCreate   Operation = "create"
	OpDrop     Operation = "drop"
	OpMigrate  Operation = "migrate"
	OpSeed     Operation = "seed"
	OpRollback Operation = "rollback"
	OpUp       Operation = "up"
	OpDown     Operation = "down"
	OpRedo     Operation = "redo"
)

// Params carries the optional numeric arguments of an operation. Version is
// mandatory for up and down.
type Params struct {
	Version *int64
	Steps   int
}

// Session is one worker's private view of the system: its own adapter and
// connection, never shared with another worker.
type Session struct {
	Adapter    f.Adapter
	Connection f.Connection
	Migrator   f.Migrator
}

type SessionFactory func(ctx context.Context) (*Session, error)

// Runner applies one operation to every tenant in the registry, sequentially
// or across a bounded worker pool.
type Runner struct {
	cfg      f.Config
	registry f.Registry
	sessions SessionFactory
}

func NewRunner(cfg f.Config, registry f.Registry, sessions SessionFactory) *Runner {
	return &Runner{cfg: cfg, registry: registry, sessions: sessions}
}

// Run applies op once per tenant. An explicit tenant list overrides the
// registry. Per-tenant failures are logged and never abort sibling work; only
// a missing required parameter or an unreadable registry is fatal, and both
// abort before any per-tenant work starts.
func (r *Runner) Run(ctx context.Context, op Operation, params Params, tenants ...string) error {
	if (op == OpUp || op == OpDown) && params.Version == nil {
		return apterrors.MissingParam("version")
	}
	list := tenants
	if len(list) == 0 {
		var err error
		list, err = r.registry.Tenants(ctx)
		if err != nil {
			return fmt.Errorf("failed to load tenant list: %v", err)
		}
	}
	if len(list) == 0 {
		log.Warn("no tenants to process")
		return nil
	}

	runId := uuid.NewString()[:8]
	started := time.Now()
	log.Info("[%s] running %s over %d tenants", runId, op, len(list))

	var err error
	if r.cfg.Parallel {
		err = r.runParallel(ctx, op, params, list)
	} else {
		err = r.runSequential(ctx, op, params, list)
	}
	log.Info("[%s] %s completed in %s", runId, op, time.Since(started))
	return err
}

func (r *Runner) runSequential(ctx context.Context, op Operation, params Params, tenants []string) error {
	session, err := r.sessions(ctx)
	if err != nil {
		return err
	}
	for _, tenant := range tenants {
		if err := r.apply(ctx, session, op, params, tenant); err != nil {
			log.Tenant(tenant).Errorf("%s failed: %v", op, err)
		}
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, op Operation, params Params, tenants []string) error {
	queue := make(chan string, len(tenants))
	for _, tenant := range tenants {
		queue <- tenant
	}
	close(queue)

	workers := r.cfg.WorkerCount
	if workers > len(tenants) {
		workers = len(tenants)
	}
	g := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		worker := i
		g.Go(func() error {
			// staggered start so the pool does not stampede the connection
			// layer at launch
			time.Sleep(time.Duration(worker) * r.cfg.WorkerStagger)
			session, err := r.sessions(ctx)
			if err != nil {
				return fmt.Errorf("worker %d failed to start: %v", worker, err)
			}
			for tenant := range queue {
				err := r.apply(ctx, session, op, params, tenant)
				if err != nil && apterrors.IsRetryable(err) {
					log.Tenant(tenant).Warnf("transient failure, retrying: %v", err)
					time.Sleep(r.cfg.RetryDelay)
					err = r.apply(ctx, session, op, params, tenant)
				}
				if err != nil {
					log.Tenant(tenant).Errorf("%s failed: %v", op, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) apply(ctx context.Context, s *Session, op Operation, params Params, tenant string) error {
	switch op {
	case OpCreate:
		return s.Adapter.Create(ctx, tenant)
	case OpDrop:
		return s.Adapter.Drop(ctx, tenant)
	case OpMigrate:
		return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
			return s.Migrator.Up(ctx, s.Connection, tenant)
		})
	case OpSeed:
		if r.cfg.SeedFunc != nil {
			return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
				return r.cfg.SeedFunc(ctx, tenant, s.Connection)
			})
		}
		if r.cfg.SeedDir != "" {
			return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
				return s.Migrator.Seed(ctx, s.Connection, tenant)
			})
		}
		log.Tenant(tenant).Warn("no seed function or seed directory configured, skipping")
		return nil
	case OpRollback:
		return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
			return s.Migrator.Rollback(ctx, s.Connection, tenant, params.Steps)
		})
	case OpUp:
		return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
			return s.Migrator.UpTo(ctx, s.Connection, tenant, *params.Version)
		})
	case OpDown:
		return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
			return s.Migrator.DownTo(ctx, s.Connection, tenant, *params.Version)
		})
	case OpRedo:
		return s.Adapter.Switch(ctx, tenant, func(ctx context.Context) error {
			return s.Migrator.Redo(ctx, s.Connection, tenant)
		})
	}
	return fmt.Errorf("unknown operation: %s", op)
}
