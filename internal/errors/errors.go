package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "in organization"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AuthenticationError represents authentication-related errors
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError represents authorization-related errors
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// TenancyError represents a tenant-isolation violation. These are always
// hard failures; callers must never fall back to an unscoped result.
type TenancyError struct {
	Message string
}

func (e *TenancyError) Error() string {
	return e.Message
}

// Entity Not Found Errors
var (
	ErrOrganizationNotFound      = &NotFoundError{Entity: "organization"}
	ErrUserNotFound              = &NotFoundError{Entity: "user"}
	ErrMembershipNotFound        = &NotFoundError{Entity: "membership"}
	ErrInvitationNotFound        = &NotFoundError{Entity: "invitation"}
	ErrSubscriptionEventNotFound = &NotFoundError{Entity: "subscription event"}
	ErrProjectNotFound           = &NotFoundError{Entity: "project"}
	ErrTimeEntryNotFound         = &NotFoundError{Entity: "time entry"}
	ErrProviderSubscription      = &NotFoundError{Entity: "provider subscription"}
)

// Already Exists Errors
var (
	ErrOrganizationExists = &AlreadyExistsError{Entity: "organization", Context: "with this slug"}
	ErrMembershipExists   = &AlreadyExistsError{Entity: "membership", Context: "for this user in the organization"}
	ErrProjectExists      = &AlreadyExistsError{Entity: "project", Context: "with this name in the organization"}
)

// Tenancy Errors
var (
	// ErrNoActiveOrganization is returned by any scoped operation invoked
	// without an organization on the context. Queries fail closed; they
	// never silently return unscoped rows.
	ErrNoActiveOrganization = &TenancyError{Message: "no active organization in context"}

	// ErrAccessDenied is returned when the authenticated user has no
	// active membership in the asserted organization.
	ErrAccessDenied = &AuthorizationError{Message: "no active membership in the requested organization"}

	// ErrCrossTenantReference is returned when a joined entity belongs to
	// a different organization than the active one. This is a
	// data-integrity violation, not a lookup miss.
	ErrCrossTenantReference = &TenancyError{Message: "referenced entity belongs to a different organization"}
)

// Billing Errors
var (
	ErrInvalidSignature        = errors.New("webhook signature verification failed")
	ErrSeatLimitExceeded       = errors.New("organization has no available seats for its plan")
	ErrSyncFailure             = errors.New("provider seat synchronization failed")
	ErrStaleEvent              = errors.New("event is older than the last applied billing event")
	ErrInvalidTransition       = errors.New("subscription status transition not allowed")
	ErrConcurrentBillingUpdate = errors.New("billing state was modified concurrently")
	ErrSubscriptionRequired    = errors.New("organization subscription does not allow this action")
)

// Business Logic Errors
var (
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPaginationParams = errors.New("invalid pagination parameters")
	ErrInvitationConsumed      = errors.New("invitation token has already been used")
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAuthentication checks if an error is an AuthenticationError
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	var authzErr *AuthorizationError
	return errors.As(err, &authzErr)
}

// IsTenancy checks if an error is a TenancyError
func IsTenancy(err error) bool {
	var tenancyErr *TenancyError
	return errors.As(err, &tenancyErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

// NewAuthorizationError creates a new AuthorizationError
func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}
