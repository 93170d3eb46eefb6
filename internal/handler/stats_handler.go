package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/TheCodister/financial-management-app/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// StatsHandler handles aggregation-related HTTP requests
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// StatsTotalsResponse represents window totals in API responses
type StatsTotalsResponse struct {
	TotalIncome      string `json:"totalIncome"`
	TotalExpenses    string `json:"totalExpenses"`
	Net              string `json:"net"`
	TransactionCount int64  `json:"transactionCount"`
}

// CategorySumResponse represents one expense category ranking entry
type CategorySumResponse struct {
	Category string `json:"category"`
	Sum      string `json:"sum"`
}

// TrendPointResponse represents one calendar-day trend bucket
type TrendPointResponse struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// StatsResponse represents the full stats summary in API responses
type StatsResponse struct {
	Totals     StatsTotalsResponse   `json:"totals"`
	ByCategory []CategorySumResponse `json:"byCategory"`
	Trend      []TrendPointResponse  `json:"trend"`
	Start      string                `json:"start"`
	End        string                `json:"end"`
}

// GetStats godoc
// @Summary Get transaction statistics
// @Description Compute totals, expense category breakdown, and daily trend for a date window. Defaults to the current calendar month.
// @Tags stats
// @Accept json
// @Produce json
// @Param startDate query string false "Window start (YYYY-MM-DD)"
// @Param endDate query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} StatsResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions/stats [get]
func (h *StatsHandler) GetStats(c echo.Context) error {
	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")

	var window *domain.Window
	if startStr != "" || endStr != "" {
		if startStr == "" || endStr == "" {
			return NewValidationError(c, "startDate and endDate must be provided together", nil)
		}
		start, err := parseDate(startStr)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		end, err := parseDate(endStr)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		// A date-only end bound means the whole of that day.
		if len(endStr) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		window = &domain.Window{Start: start, End: end}
	}

	summary, err := h.statsService.Summarize(window)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return NewValidationError(c, "endDate must not be before startDate", nil)
		}
		log.Error().Err(err).Msg("Failed to compute stats")
		return NewInternalError(c, "Failed to compute stats")
	}

	response := StatsResponse{
		Totals: StatsTotalsResponse{
			TotalIncome:      summary.Totals.TotalIncome.StringFixed(2),
			TotalExpenses:    summary.Totals.TotalExpenses.StringFixed(2),
			Net:              summary.Totals.Net.StringFixed(2),
			TransactionCount: summary.Totals.TransactionCount,
		},
		ByCategory: make([]CategorySumResponse, len(summary.ByCategory)),
		Trend:      make([]TrendPointResponse, len(summary.Trend)),
		Start:      summary.Start.Format(time.RFC3339),
		End:        summary.End.Format(time.RFC3339),
	}
	for i, entry := range summary.ByCategory {
		response.ByCategory[i] = CategorySumResponse{
			Category: entry.Category,
			Sum:      entry.Sum.StringFixed(2),
		}
	}
	for i, point := range summary.Trend {
		response.Trend[i] = TrendPointResponse{
			Date:    point.Date,
			Income:  point.Income.StringFixed(2),
			Expense: point.Expense.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, response)
}
