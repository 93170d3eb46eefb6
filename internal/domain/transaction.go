package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type SortField string

const (
	SortFieldDate     SortField = "date"
	SortFieldAmount   SortField = "amount"
	SortFieldCategory SortField = "category"
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

type Transaction struct {
	ID          int32           `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionFilters narrows a listing query. A nil Type means both
// income and expense; nil date bounds are unbounded on that side.
type TransactionFilters struct {
	Type      *TransactionType
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	Search    *string
	SortBy    SortField
	SortOrder SortOrder
	Page      int32
	PageSize  int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxDescriptionLength = 200
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// UpdateTransactionData is a full replacement of the user-settable fields.
type UpdateTransactionData struct {
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        time.Time
}

// AggregateFilters scopes the store-side aggregate queries (sums,
// count, group-by) to an inclusive date window and optional type.
type AggregateFilters struct {
	Type      *TransactionType
	StartDate time.Time
	EndDate   time.Time
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(id int32) (*Transaction, error)
	Find(filters *TransactionFilters) ([]*Transaction, error)
	Count(filters *TransactionFilters) (int64, error)
	Update(id int32, data *UpdateTransactionData) (*Transaction, error)
	Delete(id int32) error
	SumAmount(filters AggregateFilters) (decimal.Decimal, error)
	CountInWindow(filters AggregateFilters) (int64, error)
	GroupSumByCategory(filters AggregateFilters, limit int32) ([]*CategorySum, error)
	FindInWindow(filters AggregateFilters) ([]*Transaction, error)
}
