package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/TheCodister/financial-management-app/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          int32   `json:"id"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents paginated transactions in API responses
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// BulkDeleteRequest represents the bulk delete request body
type BulkDeleteRequest struct {
	IDs []int32 `json:"ids"`
}

// BulkDeleteResponse reports how many transactions were actually deleted
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create a new income or expense transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD or RFC 3339 format"},
			})
		}
		date = &parsed
	}

	input := service.CreateTransactionInput{
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}

	transaction, err := h.transactionService.CreateTransaction(input)
	if err != nil {
		if resp := validationProblem(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Int32("transaction_id", transaction.ID).Str("type", string(transaction.Type)).Str("category", transaction.Category).Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get paginated transactions with optional filters and sorting
// @Tags transactions
// @Accept json
// @Produce json
// @Param type query string false "Transaction type (income, expense, or all)"
// @Param category query string false "Filter by exact category"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param search query string false "Case-insensitive substring match on description"
// @Param sortBy query string false "Sort field (date, amount, category)" default(date)
// @Param sortOrder query string false "Sort order (asc or desc)" default(desc)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{}

	if typeStr := c.QueryParam("type"); typeStr != "" && typeStr != "all" {
		transactionType := domain.TransactionType(typeStr)
		if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type (must be 'income', 'expense', or 'all')", nil)
		}
		filters.Type = &transactionType
	}

	if category := c.QueryParam("category"); category != "" {
		filters.Category = &category
	}

	if startDateStr := c.QueryParam("startDate"); startDateStr != "" {
		parsed, err := parseDate(startDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		filters.StartDate = &parsed
	}

	if endDateStr := c.QueryParam("endDate"); endDateStr != "" {
		parsed, err := parseDate(endDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		filters.EndDate = &parsed
	}

	if search := c.QueryParam("search"); search != "" {
		filters.Search = &search
	}

	filters.SortBy = domain.SortField(c.QueryParam("sortBy"))
	filters.SortOrder = domain.SortOrder(c.QueryParam("sortOrder"))

	if pageStr := c.QueryParam("page"); pageStr != "" {
		var page int32
		if _, err := parseIntParam(pageStr, &page); err != nil || page < 1 {
			return NewValidationError(c, "Invalid page (must be positive integer)", nil)
		}
		filters.Page = page
	}

	if pageSizeStr := c.QueryParam("pageSize"); pageSizeStr != "" {
		var pageSize int32
		if _, err := parseIntParam(pageSizeStr, &pageSize); err != nil || pageSize < 1 {
			return NewValidationError(c, "Invalid pageSize (must be positive integer)", nil)
		}
		filters.PageSize = pageSize
	}

	result, err := h.transactionService.List(filters)
	if err != nil {
		if resp := validationProblem(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, transaction := range result.Data {
		response.Data[i] = toTransactionResponse(transaction)
	}

	return c.JSON(http.StatusOK, response)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Description Get a single transaction by ID
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetByID(int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Replace an existing transaction's fields
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction update request"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD or RFC 3339 format"},
			})
		}
		date = parsed
	}

	input := service.UpdateTransactionInput{
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
	}

	transaction, err := h.transactionService.UpdateTransaction(int32(id), input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := validationProblem(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Int32("transaction_id", transaction.ID).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Permanently delete a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(int32(id)); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteTransactions godoc
// @Summary Bulk delete transactions
// @Description Delete a set of transactions by id; missing ids are skipped
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body BulkDeleteRequest true "Bulk delete request"
// @Success 200 {object} BulkDeleteResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions/bulk-delete [post]
func (h *TransactionHandler) BulkDeleteTransactions(c echo.Context) error {
	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.IDs) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "ids", Message: "At least one id is required"},
		})
	}

	deleted, err := h.transactionService.BulkDelete(req.IDs)
	if err != nil {
		log.Error().Err(err).Int("requested", len(req.IDs)).Int64("deleted", deleted).Msg("Bulk delete failed partway")
		return NewInternalError(c, "Failed to delete transactions")
	}

	log.Info().Int("requested", len(req.IDs)).Int64("deleted", deleted).Msg("Transactions bulk deleted")
	return c.JSON(http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

// validationProblem maps domain validation errors to a 400 problem
// response, or returns nil for errors that are not validation failures.
func validationProblem(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than 0"},
		})
	case errors.Is(err, domain.ErrCategoryRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Category is required"},
		})
	case errors.Is(err, domain.ErrUnknownCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Category does not exist for this type"},
		})
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 200 characters or less"},
		})
	case errors.Is(err, domain.ErrFutureDate):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "date", Message: "Date cannot be in the future"},
		})
	case errors.Is(err, domain.ErrInvalidSortField):
		return NewValidationError(c, "Invalid sortBy (must be one of: date, amount, category)", nil)
	case errors.Is(err, domain.ErrInvalidSortOrder):
		return NewValidationError(c, "Invalid sortOrder (must be 'asc' or 'desc')", nil)
	case errors.Is(err, domain.ErrInvalidPage):
		return NewValidationError(c, "Invalid page (must be positive integer)", nil)
	case errors.Is(err, domain.ErrInvalidPageSize):
		return NewValidationError(c, "Invalid pageSize (must be positive integer)", nil)
	default:
		return nil
	}
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", s); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Helper function to parse int query params with overflow protection
func parseIntParam(s string, out *int32) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return false, errors.New("invalid integer")
	}
	*out = int32(v)
	return true, nil
}

// Helper function to convert domain.Transaction to TransactionResponse
func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        transaction.ID,
		Type:      string(transaction.Type),
		Amount:    transaction.Amount.StringFixed(2),
		Category:  transaction.Category,
		Date:      transaction.Date.UTC().Format("2006-01-02"),
		CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt: transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.Description != nil {
		resp.Description = transaction.Description
	}
	return resp
}
