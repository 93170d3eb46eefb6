package handler

import (
	"net/http"

	"github.com/TheCodister/financial-management-app/internal/domain"
	"github.com/labstack/echo/v4"
)

// CategoryHandler serves the fixed category vocabularies
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoriesResponse lists the valid categories per transaction type
type CategoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// GetCategories godoc
// @Summary List category vocabularies
// @Description Get the fixed income and expense category sets
// @Tags categories
// @Accept json
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, CategoriesResponse{
		Income:  domain.IncomeCategories,
		Expense: domain.ExpenseCategories,
	})
}
