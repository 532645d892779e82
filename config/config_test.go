package config

import (
	"testing"

	f "github.com/Shopmatic/apartment/core"
	"github.com/onsi/gomega"
)

func TestLoad_Defaults(t *testing.T) {
	g := gomega.NewWithT(t)

	var cfg f.Config
	Load(&cfg)

	g.Expect(cfg.Strategy).To(gomega.Equal(f.StrategySchemas))
	g.Expect(cfg.DefaultSchema).To(gomega.Equal("public"))
	g.Expect(cfg.ChangelogTable).To(gomega.Equal("database_changelog"))
	g.Expect(cfg.WorkerCount).To(gomega.Equal(4))
}

func TestLoad_FromEnvironment(t *testing.T) {
	g := gomega.NewWithT(t)

	t.Setenv("APARTMENT_STRATEGY", "single")
	t.Setenv("APARTMENT_TENANTS", "acme,globex,initech")
	t.Setenv("APARTMENT_PARALLEL", "true")
	t.Setenv("APARTMENT_WORKERS", "8")

	var cfg f.Config
	Load(&cfg)

	g.Expect(cfg.Strategy).To(gomega.Equal(f.StrategySingle))
	g.Expect(cfg.Tenants).To(gomega.Equal([]string{"acme", "globex", "initech"}))
	g.Expect(cfg.Parallel).To(gomega.BeTrue())
	g.Expect(cfg.WorkerCount).To(gomega.Equal(8))
}
