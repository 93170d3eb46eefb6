package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/TheCodister/financial-management-app/internal/testutil"
	"github.com/shopspring/decimal"
)

func seedTransaction(repo *testutil.MockTransactionRepository, id int32, txType domain.TransactionType, amount string, category string, date time.Time) {
	amt, _ := decimal.NewFromString(amount)
	repo.AddTransaction(&domain.Transaction{
		ID:       id,
		Type:     txType,
		Amount:   amt,
		Category: category,
		Date:     date,
	})
}

func TestCreateTransaction_Validation(t *testing.T) {
	pastDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	futureDate := time.Now().UTC().AddDate(0, 0, 1)
	longDescription := strings.Repeat("a", domain.MaxDescriptionLength+1)

	tests := []struct {
		name    string
		input   CreateTransactionInput
		wantErr error
	}{
		{
			name: "valid expense",
			input: CreateTransactionInput{
				Type:     domain.TransactionTypeExpense,
				Amount:   decimal.RequireFromString("42.50"),
				Category: "Food & Dining",
				Date:     &pastDate,
			},
		},
		{
			name: "invalid type",
			input: CreateTransactionInput{
				Type:     "transfer",
				Amount:   decimal.NewFromInt(10),
				Category: "Food & Dining",
			},
			wantErr: domain.ErrInvalidTransactionType,
		},
		{
			name: "zero amount",
			input: CreateTransactionInput{
				Type:     domain.TransactionTypeExpense,
				Amount:   decimal.Zero,
				Category: "Food & Dining",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "negative amount",
			input: CreateTransactionInput{
				Type:     domain.TransactionTypeExpense,
				Amount:   decimal.NewFromInt(-5),
				Category: "Food & Dining",
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "empty category",
			input: CreateTransactionInput{
				Type:   domain.TransactionTypeExpense,
				Amount: decimal.NewFromInt(10),
			},
			wantErr: domain.ErrCategoryRequired,
		},
		{
			name: "income category on expense",
			input: CreateTransactionInput{
				Type:     domain.TransactionTypeExpense,
				Amount:   decimal.NewFromInt(10),
				Category: "Salary",
			},
			wantErr: domain.ErrUnknownCategory,
		},
		{
			name: "future date",
			input: CreateTransactionInput{
				Type:     domain.TransactionTypeIncome,
				Amount:   decimal.NewFromInt(10),
				Category: "Salary",
				Date:     &futureDate,
			},
			wantErr: domain.ErrFutureDate,
		},
		{
			name: "description too long",
			input: CreateTransactionInput{
				Type:        domain.TransactionTypeExpense,
				Amount:      decimal.NewFromInt(10),
				Category:    "Food & Dining",
				Description: &longDescription,
				Date:        &pastDate,
			},
			wantErr: domain.ErrDescriptionTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockTransactionRepository()
			svc := NewTransactionService(repo)

			_, err := svc.CreateTransaction(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateTransaction_DateEqualToNowSucceeds(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	now := time.Now().UTC()
	_, err := svc.CreateTransaction(CreateTransactionInput{
		Type:     domain.TransactionTypeIncome,
		Amount:   decimal.NewFromInt(100),
		Category: "Salary",
		Date:     &now,
	})
	if err != nil {
		t.Fatalf("Expected no error for date equal to now, got %v", err)
	}
}

func TestCreateTransaction_RoundTrip(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateTransaction(CreateTransactionInput{
		Type:     domain.TransactionTypeExpense,
		Amount:   decimal.RequireFromString("42.50"),
		Category: "Food & Dining",
		Date:     &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected a store-assigned id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("Expected store-managed timestamps")
	}

	fetched, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fetched.Type != domain.TransactionTypeExpense {
		t.Errorf("Expected type expense, got %s", fetched.Type)
	}
	if !fetched.Amount.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("Expected amount 42.50, got %s", fetched.Amount)
	}
	if fetched.Category != "Food & Dining" {
		t.Errorf("Expected category 'Food & Dining', got %s", fetched.Category)
	}
	if !fetched.Date.Equal(date) {
		t.Errorf("Expected date %v, got %v", date, fetched.Date)
	}
}

func TestList_PaginationArithmetic(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	for i := int32(1); i <= 45; i++ {
		seedTransaction(repo, i, domain.TransactionTypeExpense, "10.00", "Food & Dining",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(i%28)))
	}

	result, err := svc.List(&domain.TransactionFilters{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.TotalItems != 45 {
		t.Errorf("Expected 45 total items, got %d", result.TotalItems)
	}
	if result.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", result.TotalPages)
	}
	if len(result.Data) != 20 {
		t.Errorf("Expected 20 items on page 1, got %d", len(result.Data))
	}

	last, err := svc.List(&domain.TransactionFilters{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(last.Data) != 5 {
		t.Errorf("Expected 5 items on page 3, got %d", len(last.Data))
	}
}

func TestList_PagePastEndReturnsEmpty(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	seedTransaction(repo, 1, domain.TransactionTypeIncome, "1000.00", "Salary",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	result, err := svc.List(&domain.TransactionFilters{Page: 5, PageSize: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Data) != 0 {
		t.Errorf("Expected empty page, got %d items", len(result.Data))
	}
	if result.TotalItems != 1 {
		t.Errorf("Expected total 1, got %d", result.TotalItems)
	}
	if result.TotalPages != 1 {
		t.Errorf("Expected 1 total page, got %d", result.TotalPages)
	}
}

func TestList_EmptyResultHasOnePage(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	result, err := svc.List(&domain.TransactionFilters{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.TotalPages != 1 {
		t.Errorf("Expected totalPages 1 for empty set, got %d", result.TotalPages)
	}
	if result.Data == nil {
		t.Error("Expected empty slice, got nil")
	}
}

func TestList_ExpensesSortedByDateDesc(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	seedTransaction(repo, 1, domain.TransactionTypeIncome, "1000.00", "Salary",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	seedTransaction(repo, 2, domain.TransactionTypeExpense, "300.00", "Food & Dining",
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	seedTransaction(repo, 3, domain.TransactionTypeExpense, "200.00", "Food & Dining",
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))

	expense := domain.TransactionTypeExpense
	result, err := svc.List(&domain.TransactionFilters{Type: &expense, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("Expected 2 expense records, got %d", len(result.Data))
	}
	if result.Data[0].ID != 3 || result.Data[1].ID != 2 {
		t.Errorf("Expected order [3, 2], got [%d, %d]", result.Data[0].ID, result.Data[1].ID)
	}
}

func TestList_StableTiebreakOnEqualSortValues(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	sameDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	seedTransaction(repo, 3, domain.TransactionTypeExpense, "10.00", "Badminton", sameDate)
	seedTransaction(repo, 1, domain.TransactionTypeExpense, "20.00", "Rackets", sameDate)
	seedTransaction(repo, 2, domain.TransactionTypeExpense, "30.00", "Tech Stuff", sameDate)

	for run := 0; run < 3; run++ {
		result, err := svc.List(&domain.TransactionFilters{SortBy: domain.SortFieldDate, Page: 1, PageSize: 20})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for i, wantID := range []int32{1, 2, 3} {
			if result.Data[i].ID != wantID {
				t.Errorf("Run %d: expected id %d at position %d, got %d", run, wantID, i, result.Data[i].ID)
			}
		}
	}
}

func TestList_InvalidInputs(t *testing.T) {
	tests := []struct {
		name    string
		filters domain.TransactionFilters
		wantErr error
	}{
		{"bad sort field", domain.TransactionFilters{SortBy: "description"}, domain.ErrInvalidSortField},
		{"bad sort order", domain.TransactionFilters{SortOrder: "up"}, domain.ErrInvalidSortOrder},
		{"negative page", domain.TransactionFilters{Page: -1}, domain.ErrInvalidPage},
		{"negative page size", domain.TransactionFilters{PageSize: -1}, domain.ErrInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockTransactionRepository()
			svc := NewTransactionService(repo)

			_, err := svc.List(&tt.filters)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestList_SearchMatchesDescriptionSubstring(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	desc := "Weekly groceries run"
	amt := decimal.RequireFromString("55.00")
	repo.AddTransaction(&domain.Transaction{
		ID: 1, Type: domain.TransactionTypeExpense, Amount: amt,
		Category: "Food & Dining", Description: &desc,
		Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	seedTransaction(repo, 2, domain.TransactionTypeExpense, "12.00", "Transportation",
		time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))

	search := "GROCERIES"
	result, err := svc.List(&domain.TransactionFilters{Search: &search})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].ID != 1 {
		t.Errorf("Expected only the described transaction, got %d items", len(result.Data))
	}
}

func TestUpdateTransaction_IdenticalDataIsNoOp(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateTransaction(CreateTransactionInput{
		Type:     domain.TransactionTypeExpense,
		Amount:   decimal.RequireFromString("42.50"),
		Category: "Food & Dining",
		Date:     &date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, err := svc.UpdateTransaction(created.ID, UpdateTransactionInput{
		Type:     created.Type,
		Amount:   created.Amount,
		Category: created.Category,
		Date:     created.Date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if updated.Type != created.Type || !updated.Amount.Equal(created.Amount) ||
		updated.Category != created.Category || !updated.Date.Equal(created.Date) {
		t.Error("Expected stored value unchanged after identical update")
	}

	fetched, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fetched.Amount.Equal(created.Amount) {
		t.Error("Expected re-read value identical after identical update")
	}
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.UpdateTransaction(999, UpdateTransactionInput{
		Type:     domain.TransactionTypeIncome,
		Amount:   decimal.NewFromInt(10),
		Category: "Salary",
		Date:     date,
	})
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestDeleteTransaction_IdempotentNotFound(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	seedTransaction(repo, 1, domain.TransactionTypeExpense, "10.00", "Food & Dining",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if err := svc.DeleteTransaction(1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Same outcome on both subsequent attempts.
	for i := 0; i < 2; i++ {
		if err := svc.DeleteTransaction(1); !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Errorf("Attempt %d: expected not found, got %v", i, err)
		}
	}
}

func TestBulkDelete_SwallowsMissingIDs(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	for i := int32(1); i <= 3; i++ {
		seedTransaction(repo, i, domain.TransactionTypeExpense, "10.00", "Food & Dining",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	}

	deleted, err := svc.BulkDelete([]int32{1, 2, 3, 99, 100})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	if len(repo.Transactions) != 0 {
		t.Errorf("Expected all seeded transactions gone, %d remain", len(repo.Transactions))
	}
}

func TestBulkDelete_PartialFailureKeepsSuccesses(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	svc := NewTransactionService(repo)

	for i := int32(1); i <= 2; i++ {
		seedTransaction(repo, i, domain.TransactionTypeExpense, "10.00", "Food & Dining",
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	}

	storeErr := errors.New("store unavailable")
	repo.DeleteFn = func(id int32) error {
		if id == 2 {
			return storeErr
		}
		delete(repo.Transactions, id)
		return nil
	}

	deleted, err := svc.BulkDelete([]int32{1, 2})
	if !errors.Is(err, storeErr) {
		t.Errorf("Expected store error surfaced, got %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted despite failure, got %d", deleted)
	}
	if _, ok := repo.Transactions[1]; ok {
		t.Error("Expected successful delete not rolled back")
	}
}
