package h

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestValidIdent(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(ValidIdent("tenant1")).To(gomega.BeTrue())
	g.Expect(ValidIdent("_private")).To(gomega.BeTrue())
	g.Expect(ValidIdent("acme_corp")).To(gomega.BeTrue())

	g.Expect(ValidIdent("")).To(gomega.BeFalse())
	g.Expect(ValidIdent("1tenant")).To(gomega.BeFalse())
	g.Expect(ValidIdent("acme-corp")).To(gomega.BeFalse())
	g.Expect(ValidIdent("acme corp")).To(gomega.BeFalse())
	g.Expect(ValidIdent(`ac"me`)).To(gomega.BeFalse())
}

func TestQuoteIdent(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(QuoteIdent("tenant1")).To(gomega.Equal(`"tenant1"`))
	g.Expect(QuoteIdent(`we"ird`)).To(gomega.Equal(`"we""ird"`))
}

func TestSearchPath(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(SearchPath("acme", "public")).To(gomega.Equal(`"acme", "public"`))
	// duplicates collapse, first occurrence wins
	g.Expect(SearchPath("acme", "public", "acme")).To(gomega.Equal(`"acme", "public"`))
	// empties are dropped
	g.Expect(SearchPath("", "public")).To(gomega.Equal(`"public"`))
}
