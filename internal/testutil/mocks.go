package testutil

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/shopspring/decimal"
)

// MockTransactionRepository is an in-memory implementation of
// domain.TransactionRepository. Filtering, sorting, and aggregation are
// computed over the stored map so service tests exercise real query
// semantics without a database.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions map[int32]*domain.Transaction
	NextID       int32

	CreateFn func(transaction *domain.Transaction) (*domain.Transaction, error)
	DeleteFn func(id int32) error
	FindFn   func(filters *domain.TransactionFilters) ([]*domain.Transaction, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// AddTransaction seeds a transaction (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
	m.Transactions[transaction.ID] = transaction
}

// Create stores a new transaction with an assigned id and timestamps
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(transaction)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	stored := *transaction
	stored.ID = m.NextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.NextID++
	m.Transactions[stored.ID] = &stored
	return &stored, nil
}

// GetByID retrieves a transaction by id
func (m *MockTransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	transaction, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	copied := *transaction
	return &copied, nil
}

// Find returns the page slice of the filtered and sorted set
func (m *MockTransactionRepository) Find(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if m.FindFn != nil {
		return m.FindFn(filters)
	}
	matched := m.match(filters)
	sortTransactions(matched, filters.SortBy, filters.SortOrder)

	offset := int((filters.Page - 1) * filters.PageSize)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + int(filters.PageSize)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// Count returns the number of matching records ignoring pagination
func (m *MockTransactionRepository) Count(filters *domain.TransactionFilters) (int64, error) {
	return int64(len(m.match(filters))), nil
}

// Update replaces the user-settable fields of a stored transaction
func (m *MockTransactionRepository) Update(id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	transaction, ok := m.Transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.Type = data.Type
	transaction.Amount = data.Amount
	transaction.Category = data.Category
	transaction.Description = data.Description
	transaction.Date = data.Date
	transaction.UpdatedAt = time.Now().UTC()
	copied := *transaction
	return &copied, nil
}

// Delete removes a stored transaction
func (m *MockTransactionRepository) Delete(id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Transactions[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// SumAmount sums amounts over the window, optionally restricted to a type
func (m *MockTransactionRepository) SumAmount(filters domain.AggregateFilters) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range m.matchWindow(filters) {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

// CountInWindow counts records in the window
func (m *MockTransactionRepository) CountInWindow(filters domain.AggregateFilters) (int64, error) {
	return int64(len(m.matchWindow(filters))), nil
}

// GroupSumByCategory groups window records by category with descending sums
func (m *MockTransactionRepository) GroupSumByCategory(filters domain.AggregateFilters, limit int32) ([]*domain.CategorySum, error) {
	grouped := make(map[string]decimal.Decimal)
	for _, tx := range m.matchWindow(filters) {
		grouped[tx.Category] = grouped[tx.Category].Add(tx.Amount)
	}

	sums := make([]*domain.CategorySum, 0, len(grouped))
	for category, sum := range grouped {
		sums = append(sums, &domain.CategorySum{Category: category, Sum: sum})
	}
	sort.Slice(sums, func(i, j int) bool {
		if !sums[i].Sum.Equal(sums[j].Sum) {
			return sums[i].Sum.GreaterThan(sums[j].Sum)
		}
		return sums[i].Category < sums[j].Category
	})
	if int32(len(sums)) > limit {
		sums = sums[:limit]
	}
	return sums, nil
}

// FindInWindow returns all window records ordered by date then id
func (m *MockTransactionRepository) FindInWindow(filters domain.AggregateFilters) ([]*domain.Transaction, error) {
	matched := m.matchWindow(filters)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (m *MockTransactionRepository) match(filters *domain.TransactionFilters) []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.Category != nil && tx.Category != *filters.Category {
			continue
		}
		if filters.StartDate != nil && tx.Date.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.Date.After(*filters.EndDate) {
			continue
		}
		if filters.Search != nil {
			if tx.Description == nil {
				continue
			}
			if !strings.Contains(strings.ToLower(*tx.Description), strings.ToLower(*filters.Search)) {
				continue
			}
		}
		copied := *tx
		matched = append(matched, &copied)
	}
	return matched
}

func (m *MockTransactionRepository) matchWindow(filters domain.AggregateFilters) []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if tx.Date.Before(filters.StartDate) || tx.Date.After(filters.EndDate) {
			continue
		}
		copied := *tx
		matched = append(matched, &copied)
	}
	return matched
}

func sortTransactions(transactions []*domain.Transaction, field domain.SortField, order domain.SortOrder) {
	asc := order == domain.SortOrderAsc
	sort.Slice(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		var less, equal bool
		switch field {
		case domain.SortFieldAmount:
			less = a.Amount.LessThan(b.Amount)
			equal = a.Amount.Equal(b.Amount)
		case domain.SortFieldCategory:
			less = a.Category < b.Category
			equal = a.Category == b.Category
		default:
			less = a.Date.Before(b.Date)
			equal = a.Date.Equal(b.Date)
		}
		if equal {
			// Deterministic tiebreak, matching the store's ordering.
			return a.ID < b.ID
		}
		if asc {
			return less
		}
		return !less
	})
}
