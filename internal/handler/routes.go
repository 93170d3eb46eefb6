package handler

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, transactionHandler *TransactionHandler, statsHandler *StatsHandler, categoryHandler *CategoryHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Category vocabularies
	api.GET("/categories", categoryHandler.GetCategories)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/stats", statsHandler.GetStats)
	transactions.POST("/bulk-delete", transactionHandler.BulkDeleteTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
