package f

import "context"

// Adapter is the tenancy contract every strategy implements. Application code
// and the bulk task runner only ever see this interface; the concrete
// strategy is selected once at startup by the factory.
//
// An adapter instance owns the active tenant context of exactly one
// connection. Give every concurrent worker its own adapter; two goroutines
// sharing one instance while believing they hold different tenants is a
// caller bug the adapter cannot detect.
type Adapter interface {
	// Current returns the active tenant, or the default schema name when no
	// tenant is selected.
	Current() string

	// SwitchTo makes tenant the active context for all subsequent operations
	// on this connection until the next switch. An empty tenant is the same
	// as Reset.
	SwitchTo(ctx context.Context, tenant string) error

	// Switch runs fn with tenant active and restores the prior context on
	// every exit path: normal return, error, or panic.
	Switch(ctx context.Context, tenant string, fn func(ctx context.Context) error) error

	// Reset clears the active tenant and restores the default search path.
	Reset(ctx context.Context) error

	// Create provisions a new tenant.
	Create(ctx context.Context, tenant string) error

	// Drop irreversibly removes a tenant and its data.
	Drop(ctx context.Context, tenant string) error

	// ProcessExcludedModel pins a shared model to the default schema so it is
	// never resolved inside a tenant schema.
	ProcessExcludedModel(ctx context.Context, m Model) error

	// TableLocation resolves the storage location of a model under the
	// current tenant context. Excluded models always resolve to the default
	// schema.
	TableLocation(m Model) string
}
