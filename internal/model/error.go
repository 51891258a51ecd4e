package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindConflict
)

// String returns the lower-case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeValidation              = "VALIDATION_FAILED"
	ErrCodeInvalidID               = "INVALID_ID"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeMedicineNotFound        = "MEDICINE_NOT_FOUND"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeIllegalTransition       = "ILLEGAL_TRANSITION"
	ErrCodeRejectionReasonRequired = "REJECTION_REASON_REQUIRED"
	ErrCodePriceChanged            = "PRICE_CHANGED"
	ErrCodeMedicineInUse           = "MEDICINE_IN_USE"
	ErrCodeMedicineNameTaken       = "MEDICINE_NAME_TAKEN"
	ErrCodeDuplicateRequest        = "DUPLICATE_REQUEST"
	ErrCodeEmailTaken              = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials      = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// DomainError is a business error carrying a stable code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that errors built with a dynamic
// message still satisfy errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a DomainError from err, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrInvalidQuantity         = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidStatus           = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidID               = NewDomainError(KindValidation, ErrCodeInvalidID, "Invalid identifier format")
	ErrMedicineNotFound        = NewDomainError(KindNotFound, ErrCodeMedicineNotFound, "Medicine not found")
	ErrOrderNotFound           = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrInsufficientStock       = NewDomainError(KindConflict, ErrCodeInsufficientStock, "Insufficient stock")
	ErrIllegalTransition       = NewDomainError(KindConflict, ErrCodeIllegalTransition, "Order cannot move to the requested status")
	ErrRejectionReasonRequired = NewDomainError(KindConflict, ErrCodeRejectionReasonRequired, "A rejection reason is required")
	ErrPriceChanged            = NewDomainError(KindConflict, ErrCodePriceChanged, "Order total does not match current prices")
	ErrMedicineInUse           = NewDomainError(KindConflict, ErrCodeMedicineInUse, "Medicine is referenced by existing orders")
	ErrMedicineNameTaken       = NewDomainError(KindConflict, ErrCodeMedicineNameTaken, "A medicine with this name already exists")
	ErrDuplicateRequest        = NewDomainError(KindConflict, ErrCodeDuplicateRequest, "Request with this idempotency key is already being processed")
	ErrEmailTaken              = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email already registered")
	ErrInvalidCredentials      = NewDomainError(KindAuthentication, ErrCodeInvalidCredentials, "Invalid credentials")
	ErrUnauthorised            = NewDomainError(KindAuthentication, ErrCodeUnauthorised, "Please authenticate")
	ErrForbidden               = NewDomainError(KindAuthorization, ErrCodeForbidden, "Access denied")
)

// NewValidationError creates a validation error with a specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, message)
}

// NewInsufficientStockError names the medicine whose stock could not cover the request.
func NewInsufficientStockError(name string, available, requested int) *DomainError {
	return NewDomainError(KindConflict, ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %s (available %d, requested %d)", name, available, requested))
}

// NewMedicineNotFoundError names the missing medicine reference.
func NewMedicineNotFoundError(id string) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeMedicineNotFound, fmt.Sprintf("Medicine %s not found", id))
}
