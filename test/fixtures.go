package test

import (
	"fmt"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

// RandomTenant produces a unique, schema-safe tenant name.
func RandomTenant() string {
	word := strings.ToLower(faker.Word())
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s", word, suffix)
}

// RandomTenants produces n distinct tenant names.
func RandomTenants(n int) []string {
	seen := map[string]bool{}
	out := []string{}
	for len(out) < n {
		tenant := RandomTenant()
		if !seen[tenant] {
			seen[tenant] = true
			out = append(out, tenant)
		}
	}
	return out
}
