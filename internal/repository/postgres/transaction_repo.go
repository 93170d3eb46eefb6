package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = "id, type, amount, category, description, date, created_at, updated_at"

// sortColumns whitelists the sortable columns. User input never reaches
// the ORDER BY clause directly.
var sortColumns = map[domain.SortField]string{
	domain.SortFieldDate:     "date",
	domain.SortFieldAmount:   "amount",
	domain.SortFieldCategory: "category",
}

// Create inserts a new transaction and returns it with store-assigned
// id and timestamps.
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var description pgtype.Text
	if transaction.Description != nil {
		description.String = *transaction.Description
		description.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (type, amount, category, description, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		string(transaction.Type), amount, transaction.Category, description, transaction.Date)

	return scanTransaction(row)
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1`, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// Find retrieves the page slice of the filtered and sorted result set.
func (r *TransactionRepository) Find(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	where, args := buildListWhere(filters)

	sortColumn, ok := sortColumns[filters.SortBy]
	if !ok {
		return nil, domain.ErrInvalidSortField
	}
	direction := "DESC"
	if filters.SortOrder == domain.SortOrderAsc {
		direction = "ASC"
	}

	offset := (filters.Page - 1) * filters.PageSize
	args = append(args, filters.PageSize, offset)
	limitPos := len(args) - 1
	offsetPos := len(args)

	// id ASC tiebreak keeps ordering stable across identical calls.
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d`,
		transactionColumns, where, sortColumn, direction, limitPos, offsetPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Count returns the number of records matching the filters, ignoring
// pagination.
func (r *TransactionRepository) Count(filters *domain.TransactionFilters) (int64, error) {
	ctx := context.Background()

	where, args := buildListWhere(filters)

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions "+where, args...).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Update fully replaces the user-settable fields of a transaction
func (r *TransactionRepository) Update(id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var description pgtype.Text
	if data.Description != nil {
		description.String = *data.Description
		description.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET type = $1, amount = $2, category = $3, description = $4, date = $5, updated_at = now()
		WHERE id = $6
		RETURNING `+transactionColumns,
		string(data.Type), amount, data.Category, description, data.Date, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// Delete removes a transaction permanently
func (r *TransactionRepository) Delete(id int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumAmount sums amounts over the window, optionally restricted to a type.
// Zero matching rows yield zero, not an error.
func (r *TransactionRepository) SumAmount(filters domain.AggregateFilters) (decimal.Decimal, error) {
	ctx := context.Background()

	where, args := buildWindowWhere(filters)

	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM transactions "+where, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// CountInWindow counts records in the window, optionally restricted to a type.
func (r *TransactionRepository) CountInWindow(filters domain.AggregateFilters) (int64, error) {
	ctx := context.Background()

	where, args := buildWindowWhere(filters)

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions "+where, args...).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// GroupSumByCategory groups window records by category, summing amounts,
// largest sums first, truncated to limit groups.
func (r *TransactionRepository) GroupSumByCategory(filters domain.AggregateFilters, limit int32) ([]*domain.CategorySum, error) {
	ctx := context.Background()

	where, args := buildWindowWhere(filters)
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT category, SUM(amount) AS total
		FROM transactions
		%s
		GROUP BY category
		ORDER BY total DESC, category ASC
		LIMIT $%d`, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []*domain.CategorySum
	for rows.Next() {
		var category string
		var total pgtype.Numeric
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		sums = append(sums, &domain.CategorySum{
			Category: category,
			Sum:      pgNumericToDecimal(total),
		})
	}
	return sums, rows.Err()
}

// FindInWindow retrieves all records in the window ordered by date, for
// the trend fold.
func (r *TransactionRepository) FindInWindow(filters domain.AggregateFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	where, args := buildWindowWhere(filters)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM transactions
		%s
		ORDER BY date ASC, id ASC`, transactionColumns, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// buildListWhere translates listing filters into a WHERE clause and args.
func buildListWhere(filters *domain.TransactionFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.Type != nil {
		args = append(args, string(*filters.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filters.Category != nil {
		args = append(args, *filters.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filters.Search != nil {
		args = append(args, "%"+escapeLike(*filters.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("description ILIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildWindowWhere translates aggregate filters into a WHERE clause and args.
func buildWindowWhere(filters domain.AggregateFilters) (string, []interface{}) {
	conditions := []string{"date >= $1", "date <= $2"}
	args := []interface{}{filters.StartDate, filters.EndDate}

	if filters.Type != nil {
		args = append(args, string(*filters.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike escapes the LIKE metacharacters so search input matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		txType      string
		amount      pgtype.Numeric
		description pgtype.Text
		date        pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	if err := row.Scan(&t.ID, &txType, &amount, &t.Category, &description, &date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.Type = domain.TransactionType(txType)
	t.Amount = pgNumericToDecimal(amount)
	t.Date = date.Time
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	if description.Valid {
		t.Description = &description.String
	}
	return &t, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
