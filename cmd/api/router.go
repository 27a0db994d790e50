package api

import (
	"net/http"

	accountDelivery "sellerops-backend/internal/account/delivery"
	orderDelivery "sellerops-backend/internal/order/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, orderHandler *orderDelivery.OrderHandler, accountHandler *accountDelivery.AccountHandler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Sync routes
		sync := api.Group("/sync")
		{
			sync.POST("", orderHandler.TriggerSync)
			sync.GET("/status", orderHandler.SyncStatus)
			sync.POST("/accounts/:id", orderHandler.TriggerAccountSync)
			sync.GET("/runs", orderHandler.ListSyncRuns)
		}

		// Order routes
		orders := api.Group("/orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/notes", orderHandler.UpdateNotes)
		}

		// Auto-flag settings routes
		settings := api.Group("/settings")
		{
			settings.GET("/autoflag", orderHandler.GetAutoFlagSettings)
			settings.PUT("/autoflag", orderHandler.UpdateAutoFlagSettings)
		}

		// Account routes
		accounts := api.Group("/accounts")
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.POST("", accountHandler.ConnectAccount)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.PATCH("/:id/sync", accountHandler.SetSyncEnabled)
		}
	}
}
