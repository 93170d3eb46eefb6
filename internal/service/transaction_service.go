package service

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// bulkDeleteConcurrency caps the number of in-flight deletes per bulk
// request.
const bulkDeleteConcurrency = 8

// TransactionService handles transaction listing and CRUD business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

// List returns the page slice of the filtered and sorted result set,
// together with the pre-pagination total and page count. Requesting a
// page past the end returns an empty slice with correct totals.
func (s *TransactionService) List(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if err := normalizeFilters(filters); err != nil {
		return nil, err
	}

	totalItems, err := s.transactionRepo.Count(filters)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.Find(filters)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	totalPages := int32(totalItems / int64(filters.PageSize))
	if totalItems%int64(filters.PageSize) > 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// GetByID retrieves a transaction by ID
func (s *TransactionService) GetByID(id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        *time.Time
}

// CreateTransaction creates a new transaction with validation
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()

	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	fields, err := validateTransactionFields(input.Type, input.Amount, input.Category, input.Description, date, now)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.Create(&domain.Transaction{
		Type:        input.Type,
		Amount:      input.Amount,
		Category:    input.Category,
		Description: fields.description,
		Date:        date,
	})
}

// UpdateTransactionInput holds the input for updating a transaction.
// Updates are full replacements of the user-settable fields.
type UpdateTransactionInput struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        time.Time
}

// UpdateTransaction replaces an existing transaction's fields with validation
func (s *TransactionService) UpdateTransaction(id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	now := time.Now().UTC()
	date := input.Date.UTC()

	fields, err := validateTransactionFields(input.Type, input.Amount, input.Category, input.Description, date, now)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.Update(id, &domain.UpdateTransactionData{
		Type:        input.Type,
		Amount:      input.Amount,
		Category:    input.Category,
		Description: fields.description,
		Date:        date,
	})
}

// DeleteTransaction deletes a transaction permanently
func (s *TransactionService) DeleteTransaction(id int32) error {
	return s.transactionRepo.Delete(id)
}

// BulkDelete deletes the given ids independently and concurrently.
// Missing ids are swallowed; successful deletes are not rolled back on
// partial failure. Returns the number actually deleted.
func (s *TransactionService) BulkDelete(ids []int32) (int64, error) {
	var deleted int64

	g := new(errgroup.Group)
	g.SetLimit(bulkDeleteConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := s.transactionRepo.Delete(id)
			if err == nil {
				atomic.AddInt64(&deleted, 1)
				return nil
			}
			if err == domain.ErrTransactionNotFound {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return atomic.LoadInt64(&deleted), err
	}
	return atomic.LoadInt64(&deleted), nil
}

type validatedFields struct {
	description *string
}

// validateTransactionFields enforces the create/update invariants before
// anything reaches the store.
func validateTransactionFields(txType domain.TransactionType, amount decimal.Decimal, category string, description *string, date, now time.Time) (validatedFields, error) {
	var fields validatedFields

	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return fields, domain.ErrInvalidTransactionType
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fields, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(category) == "" {
		return fields, domain.ErrCategoryRequired
	}
	if !domain.IsValidCategory(txType, category) {
		return fields, domain.ErrUnknownCategory
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if trimmed != "" {
			if len(trimmed) > domain.MaxDescriptionLength {
				return fields, domain.ErrDescriptionTooLong
			}
			fields.description = &trimmed
		}
	}
	if date.After(now) {
		return fields, domain.ErrFutureDate
	}
	return fields, nil
}

// normalizeFilters validates sort and pagination inputs and applies
// defaults. Zero values mean "not provided" and get the defaults; a
// negative page or page size is rejected.
func normalizeFilters(filters *domain.TransactionFilters) error {
	switch filters.SortBy {
	case "":
		filters.SortBy = domain.SortFieldDate
	case domain.SortFieldDate, domain.SortFieldAmount, domain.SortFieldCategory:
	default:
		return domain.ErrInvalidSortField
	}

	switch filters.SortOrder {
	case "":
		filters.SortOrder = domain.SortOrderDesc
	case domain.SortOrderAsc, domain.SortOrderDesc:
	default:
		return domain.ErrInvalidSortOrder
	}

	if filters.Page == 0 {
		filters.Page = 1
	} else if filters.Page < 1 {
		return domain.ErrInvalidPage
	}

	if filters.PageSize == 0 {
		filters.PageSize = domain.DefaultPageSize
	} else if filters.PageSize < 1 {
		return domain.ErrInvalidPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}

	if filters.Type != nil &&
		*filters.Type != domain.TransactionTypeIncome &&
		*filters.Type != domain.TransactionTypeExpense {
		return domain.ErrInvalidTransactionType
	}

	return nil
}
