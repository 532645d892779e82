package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/test"
)

func TestNewRegistry_Fixed(t *testing.T) {
	assert := test.NewAssertions(t)

	registry, err := NewRegistry(f.Config{Tenants: []string{"acme", "globex", "acme"}})
	assert.Nil(err)

	tenants, err := registry.Tenants(context.Background())
	assert.Nil(err)
	assert.Equals(tenants, []string{"acme", "globex"})
}

func TestNewRegistry_File(t *testing.T) {
	assert := test.NewAssertions(t)

	file := path.Join(t.TempDir(), "tenants.json")
	content := `{"tenants":[{"id":"acme","name":"Acme"},{"id":"globex"}]}`
	assert.Nil(os.WriteFile(file, []byte(content), 0o600))

	registry, err := NewRegistry(f.Config{RegistryURL: "file://" + file})
	assert.Nil(err)

	tenants, err := registry.Tenants(context.Background())
	assert.Nil(err)
	assert.Equals(tenants, []string{"acme", "globex"})
}

func TestFileRegistry_MissingFile(t *testing.T) {
	assert := test.NewAssertions(t)

	registry := NewFileRegistry("/nonexistent/tenants.json")
	_, err := registry.Tenants(context.Background())
	assert.NotNil(err)
}

func TestNewRegistry_Http(t *testing.T) {
	assert := test.NewAssertions(t)

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tenants":[{"id":"acme"},{"id":"globex"}]}`))
	}))
	defer server.Close()

	registry, err := NewRegistry(f.Config{RegistryURL: server.URL})
	assert.Nil(err)

	tenants, err := registry.Tenants(context.Background())
	assert.Nil(err)
	assert.Equals(tenants, []string{"acme", "globex"})

	// second call is served from the cache
	tenants, err = registry.Tenants(context.Background())
	assert.Nil(err)
	assert.Equals(tenants, []string{"acme", "globex"})
	assert.Equals(hits, 1)
}

func TestHttpRegistry_ServerErrorIsNotCached(t *testing.T) {
	assert := test.NewAssertions(t)

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tenants":[{"id":"acme"}]}`))
	}))
	defer server.Close()

	registry, err := NewRegistry(f.Config{RegistryURL: server.URL})
	assert.Nil(err)

	// a failed fetch must surface as an error, never as an empty tenant list
	_, err = registry.Tenants(context.Background())
	assert.NotNil(err)

	// and must not poison the cache for the next call
	tenants, err := registry.Tenants(context.Background())
	assert.Nil(err)
	assert.Equals(tenants, []string{"acme"})
	assert.Equals(hits, 2)
}

func TestNewRegistry_UnsupportedScheme(t *testing.T) {
	assert := test.NewAssertions(t)

	_, err := NewRegistry(f.Config{RegistryURL: "redis://localhost"})
	assert.NotNil(err)
}
