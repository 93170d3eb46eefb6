package domain

import "errors"

// Domain errors
var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrCategoryRequired       = errors.New("category is required")
	ErrUnknownCategory        = errors.New("category does not exist for this type")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")
	ErrFutureDate             = errors.New("date cannot be in the future")
	ErrInvalidSortField       = errors.New("invalid sort field")
	ErrInvalidSortOrder       = errors.New("invalid sort order")
	ErrInvalidPage            = errors.New("page must be a positive integer")
	ErrInvalidPageSize        = errors.New("page size must be a positive integer")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
)
