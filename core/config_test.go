package f

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestConfig_Validate(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{
		Strategy:      StrategySchemas,
		DefaultSchema: "public",
		WorkerCount:   4,
		Tenants:       []string{"acme", "globex"},
	}
	g.Expect(cfg.Validate()).To(gomega.BeNil())
}

func TestConfig_Validate_BadStrategy(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{Strategy: "sharded", WorkerCount: 1}
	g.Expect(cfg.Validate()).NotTo(gomega.BeNil())
}

func TestConfig_Validate_BadTenantIdent(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{
		Strategy:    StrategySchemas,
		WorkerCount: 1,
		Tenants:     []string{"acme-corp"},
	}
	g.Expect(cfg.Validate()).NotTo(gomega.BeNil())

	// the same name is fine when no schema objects are involved
	cfg.Strategy = StrategySingle
	g.Expect(cfg.Validate()).To(gomega.BeNil())
}

func TestConfig_Validate_DuplicateTenant(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{
		Strategy:    StrategySingle,
		WorkerCount: 1,
		Tenants:     []string{"acme", "acme"},
	}
	g.Expect(cfg.Validate()).NotTo(gomega.BeNil())
}

func TestConfig_Validate_ReservedName(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{
		Strategy:    StrategySingle,
		WorkerCount: 1,
		Tenants:     []string{DisabledSentinel},
	}
	g.Expect(cfg.Validate()).NotTo(gomega.BeNil())
}

func TestConfig_SearchPaths(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{
		DefaultSchema:     "public",
		PersistentSchemas: []string{"shared", "public"},
	}
	g.Expect(cfg.DefaultSearchPath()).To(gomega.Equal([]string{"public", "shared"}))
	g.Expect(cfg.TenantSearchPath("acme")).To(gomega.Equal([]string{"acme", "shared", "public"}))
}

func TestConfig_TenantHooks(t *testing.T) {
	g := gomega.NewWithT(t)

	cfg := Config{}
	g.Expect(cfg.DecorateTenant("acme")).To(gomega.Equal("acme"))
	g.Expect(cfg.ResolveTenant("acme")).To(gomega.Equal("acme"))

	cfg.TenantDecorator = func(t string) string { return "t_" + t }
	cfg.TenantResolver = func(raw string) string { return raw + "!" }
	g.Expect(cfg.DecorateTenant("acme")).To(gomega.Equal("t_acme"))
	g.Expect(cfg.ResolveTenant("acme")).To(gomega.Equal("acme!"))
}

type invoiceModel struct{}

func (invoiceModel) TableName() string { return "invoices" }

type auditModel struct{}

func (auditModel) TableName() string    { return "audits" }
func (auditModel) TenantColumn() string { return "account_id" }

func TestTenantColumn(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(TenantColumn(invoiceModel{})).To(gomega.Equal("tenant_id"))
	g.Expect(TenantColumn(auditModel{})).To(gomega.Equal("account_id"))
}
