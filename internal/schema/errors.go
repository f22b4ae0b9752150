package schema

import "errors"

var (
	// ErrInvalidIdentifier is returned when a schema identifier contains
	// characters outside the allow-list.
	ErrInvalidIdentifier = errors.New("invalid schema identifier")

	// ErrMissingPlaceholder is returned when a template that is expected
	// to be tenant-scoped carries no schema placeholder.
	ErrMissingPlaceholder = errors.New("template has no schema placeholder")

	// ErrTenantNotInitialized is returned when a tenant row exists but its
	// schema has never been provisioned. Callers must not treat this as an
	// empty result set.
	ErrTenantNotInitialized = errors.New("tenant schema not initialized")

	// ErrTenantUnknown is returned when no tenant record exists for the
	// given identifier.
	ErrTenantUnknown = errors.New("unknown tenant")

	// ErrDropNotConfirmed is returned when a schema drop is requested
	// without the explicit confirmation flag.
	ErrDropNotConfirmed = errors.New("schema drop requires explicit confirmation")
)

// ProvisioningError wraps a failure while creating a tenant schema or one
// of its tables. Provisioning DDL is idempotent, so the operation is safe
// to retry after a ProvisioningError.
type ProvisioningError struct {
	Tenant string
	Step   string
	Err    error
}

func (e *ProvisioningError) Error() string {
	return "provisioning tenant " + e.Tenant + " failed at " + e.Step + ": " + e.Err.Error()
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}
