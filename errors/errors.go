package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
)

// TenantNotFoundError is returned when a switch or drop targets a tenant whose
// schema does not exist (or whose existence check failed).
type TenantNotFoundError struct {
	Tenant     string
	SearchPath string
}

func (e *TenantNotFoundError) Error() string {
	if e.SearchPath != "" {
		return fmt.Sprintf("tenant %s not found (search path: %s)", e.Tenant, e.SearchPath)
	}
	return fmt.Sprintf("tenant %s not found", e.Tenant)
}

// TenantExistsError is returned when creating a tenant that is already provisioned.
type TenantExistsError struct {
	Tenant string
}

func (e *TenantExistsError) Error() string {
	return fmt.Sprintf("tenant %s already exists", e.Tenant)
}

// DropTenantError wraps any lower-level failure during a tenant drop, keeping
// both the tenant id and the original cause.
type DropTenantError struct {
	Tenant string
	Cause  error
}

func (e *DropTenantError) Error() string {
	return fmt.Sprintf("failed to drop tenant %s: %v", e.Tenant, e.Cause)
}

func (e *DropTenantError) Unwrap() error {
	return e.Cause
}

// MissingParamError aborts a bulk run before any per-tenant work starts.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Param)
}

func TenantNotFound(tenant string, searchPath string) error {
	return &TenantNotFoundError{Tenant: tenant, SearchPath: searchPath}
}

func TenantExists(tenant string) error {
	return &TenantExistsError{Tenant: tenant}
}

func DropTenant(tenant string, cause error) error {
	return &DropTenantError{Tenant: tenant, Cause: cause}
}

func MissingParam(param string) error {
	return &MissingParamError{Param: param}
}

func IsTenantNotFound(err error) bool {
	var e *TenantNotFoundError
	return errors.As(err, &e)
}

func IsTenantExists(err error) bool {
	var e *TenantExistsError
	return errors.As(err, &e)
}

// retryableError marks an error as transient for the bulk runner. Tests use it
// to simulate connection timeouts without a real driver failure.
type retryableError struct {
	cause error
}

func (e *retryableError) Error() string {
	return e.cause.Error()
}

func (e *retryableError) Unwrap() error {
	return e.cause
}

func Retryable(cause error) error {
	return &retryableError{cause: cause}
}

// IsRetryable reports whether an error should be retried once by the bulk
// runner. Connection timeouts are retryable; everything else is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *retryableError
	if errors.As(err, &re) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	// SQLSTATE class 57: operator intervention, includes query_canceled on
	// statement timeout.
	var pge pgdriver.Error
	if errors.As(err, &pge) {
		return strings.HasPrefix(pge.Field('C'), "57")
	}
	return false
}
