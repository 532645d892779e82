package f

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/Shopmatic/apartment/h"
	"github.com/go-playground/validator/v10"
)

const (
	// StrategySchemas provisions one schema per tenant and re-runs migrations on create.
	StrategySchemas = "schemas"
	// StrategyClone provisions one schema per tenant by cloning the default schema with pg_dump.
	StrategyClone = "clone"
	// StrategySingle keeps all tenants in one shared schema, scoped by a tenant column.
	StrategySingle = "single"
	// StrategyDisabled turns tenancy off entirely.
	StrategyDisabled = "disabled"
)

// DisabledSentinel is what Current() reports in single-schema mode when
// multi-tenancy has been globally disabled. It is stable and never a legal
// tenant identifier (Validate rejects it).
const DisabledSentinel = "_apartment_disabled"

type SwitchHook func(from string, to string)

// Config is the tenant registry configuration. It is a snapshot: load it,
// validate it, hand it to the adapter factory, and never mutate it afterwards.
type Config struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	Strategy          string        `envconfig:"APARTMENT_STRATEGY" default:"schemas" validate:"oneof=schemas clone single disabled"`
	Tenants           []string      `envconfig:"APARTMENT_TENANTS"`
	DefaultSchema     string        `envconfig:"APARTMENT_DEFAULT_SCHEMA" default:"public"`
	PersistentSchemas []string      `envconfig:"APARTMENT_PERSISTENT_SCHEMAS"`
	ChangelogTable    string        `envconfig:"APARTMENT_CHANGELOG_TABLE" default:"database_changelog"`
	MigrationsDir     string        `envconfig:"APARTMENT_MIGRATIONS_DIR" default:"db/migrations/tenant"`
	SeedDir           string        `envconfig:"APARTMENT_SEED_DIR"`
	RegistryURL       string        `envconfig:"APARTMENT_TENANT_REGISTRY"`
	Parallel          bool          `envconfig:"APARTMENT_PARALLEL"`
	WorkerCount       int           `envconfig:"APARTMENT_WORKERS" default:"4" validate:"min=1"`
	WorkerStagger     time.Duration `envconfig:"APARTMENT_WORKER_STAGGER" default:"250ms"`
	RetryDelay        time.Duration `envconfig:"APARTMENT_RETRY_DELAY" default:"2s"`
	TenantsDisabled   bool          `envconfig:"APARTMENT_DISABLED"`

	// Not loadable from the environment.
	MigrationsFS   fs.FS                                                    `ignored:"true"`
	Models         []Model                                                  `ignored:"true"`
	ExcludedModels []Model                                                  `ignored:"true"`
	BeforeSwitch   []SwitchHook                                             `ignored:"true"`
	AfterSwitch    []SwitchHook                                             `ignored:"true"`
	SchemaExists   func(ctx context.Context, cnx Connection, schema string) (bool, error) `ignored:"true"`
	// TenantDecorator rewrites a requested tenant id before it becomes the
	// active context (single-schema strategy).
	TenantDecorator func(tenant string) string `ignored:"true"`
	// TenantResolver rewrites the raw active value into the externally
	// visible tenant name (single-schema strategy).
	TenantResolver func(raw string) string `ignored:"true"`
	// SeedFunc is invoked once per tenant by the bulk seed operation.
	SeedFunc func(ctx context.Context, tenant string, cnx Connection) error `ignored:"true"`
}

var validate = validator.New()

// Validate checks the snapshot before any adapter is built. Schema strategies
// additionally require every tenant name to be a safe schema identifier.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, tenant := range c.Tenants {
		if tenant == DisabledSentinel {
			return fmt.Errorf("tenant name %q is reserved", tenant)
		}
		if seen[tenant] {
			return fmt.Errorf("duplicate tenant name: %s", tenant)
		}
		seen[tenant] = true
		if c.UsesSchemas() && !h.ValidIdent(tenant) {
			return fmt.Errorf("tenant name %q is not a valid schema identifier", tenant)
		}
	}
	return nil
}

func (c Config) UsesSchemas() bool {
	return c.Strategy == StrategySchemas || c.Strategy == StrategyClone
}

// DefaultSearchPath is the path in effect whenever no tenant is selected:
// exactly the default schema plus the persistent schemas.
func (c Config) DefaultSearchPath() []string {
	return h.UniqueStrings(append([]string{c.DefaultSchema}, c.PersistentSchemas...))
}

// TenantSearchPath puts the tenant schema first so unqualified table lookups
// resolve there before falling back to shared tables.
func (c Config) TenantSearchPath(tenant string) []string {
	return h.UniqueStrings(append([]string{tenant}, c.PersistentSchemas...))
}

func (c Config) DecorateTenant(tenant string) string {
	if c.TenantDecorator == nil {
		return tenant
	}
	return c.TenantDecorator(tenant)
}

func (c Config) ResolveTenant(raw string) string {
	if c.TenantResolver == nil {
		return raw
	}
	return c.TenantResolver(raw)
}
