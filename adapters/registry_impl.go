package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/h"
	"github.com/Shopmatic/apartment/log"
	"github.com/go-resty/resty/v2"
)

// NewRegistry builds the tenant registry from configuration: the fixed tenant
// list by default, or a file:// / http(s):// provider when RegistryURL is set.
func NewRegistry(cfg f.Config) (f.Registry, error) {
	if cfg.RegistryURL == "" {
		return NewFixedRegistry(cfg.Tenants), nil
	}
	res, err := h.ParseUrl(cfg.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tenant registry url: %v", err)
	}
	if res.Scheme == "file" {
		log.Info("using file tenant registry: %s", res.Url)
		return NewFileRegistry(strings.TrimPrefix(res.Url, "file://")), nil
	}
	if res.Scheme == "https" || res.Scheme == "http" {
		log.Info("using http tenant registry: %s", res.Url)
		return NewHttpRegistry(res), nil
	}
	return nil, fmt.Errorf("unsupported tenant registry: %s", res.Scheme)
}

// ------------------------------------------------------------------------------------------------------------------
// FIXED REGISTRY IMPL
// ------------------------------------------------------------------------------------------------------------------

type fixedRegistry struct {
	tenants []string
}

func NewFixedRegistry(tenants []string) f.Registry {
	return &fixedRegistry{tenants: h.UniqueStrings(tenants)}
}

func (r *fixedRegistry) Tenants(ctx context.Context) ([]string, error) {
	return append([]string{}, r.tenants...), nil
}

// ------------------------------------------------------------------------------------------------------------------
// FILE REGISTRY IMPL
// ------------------------------------------------------------------------------------------------------------------

type fileRegistry struct {
	path string
}

func NewFileRegistry(path string) f.Registry {
	return &fileRegistry{path: path}
}

// Tenants re-reads the file on every call so provisioning scripts can append
// tenants between bulk runs.
func (r *fileRegistry) Tenants(ctx context.Context) ([]string, error) {
	bytes, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant file: %v", err)
	}
	var content f.TenantList
	if err := json.Unmarshal(bytes, &content); err != nil {
		return nil, fmt.Errorf("failed to parse tenant file: %v", err)
	}
	tenants := []string{}
	for _, tenant := range content.Tenants {
		tenants = append(tenants, tenant.ID)
	}
	return h.UniqueStrings(tenants), nil
}

// ------------------------------------------------------------------------------------------------------------------
// HTTP REGISTRY IMPL
// ------------------------------------------------------------------------------------------------------------------

type httpRegistry struct {
	target string
	bearer string
	client *resty.Client
	cache  h.Cache
}

func NewHttpRegistry(cfg h.Url) f.Registry {
	return &httpRegistry{
		bearer: cfg.User,
		target: cfg.Url,
		client: resty.New(),
		cache:  h.NewCache(time.Hour),
	}
}

func (r *httpRegistry) Tenants(ctx context.Context) ([]string, error) {
	if val, ok := r.cache.Get("tenants"); ok {
		return val.([]string), nil
	}
	var list f.TenantList
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&list).
		SetAuthToken(r.bearer).
		Get(r.target)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %v", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to load tenants: %s returned %s", r.target, resp.Status())
	}
	tenants := []string{}
	for _, tenant := range list.Tenants {
		tenants = append(tenants, tenant.ID)
	}
	tenants = h.UniqueStrings(tenants)
	r.cache.Set("tenants", tenants)
	log.Info("[http-registry] %d tenants loaded", len(tenants))
	return tenants, nil
}
