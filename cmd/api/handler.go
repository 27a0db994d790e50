package api

import (
	accountDelivery "sellerops-backend/internal/account/delivery"
	accountUsecasePkg "sellerops-backend/internal/account/usecase"
	orderDelivery "sellerops-backend/internal/order/delivery"
	"sellerops-backend/internal/order/scheduler"
	orderUsecasePkg "sellerops-backend/internal/order/usecase"
	"sellerops-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	orderHandler   *orderDelivery.OrderHandler
	accountHandler *accountDelivery.AccountHandler
	config         *config.Config
}

func NewHandler(orderUc orderUsecasePkg.OrderUsecase, syncUc orderUsecasePkg.SyncUsecase, accountUc accountUsecasePkg.AccountUsecase, syncSched *scheduler.SyncScheduler, cfg *config.Config) *Handler {
	return &Handler{
		orderHandler:   orderDelivery.NewOrderHandler(orderUc, syncUc, syncSched),
		accountHandler: accountDelivery.NewAccountHandler(accountUc),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.orderHandler, h.accountHandler)

	return r.Run(addr)
}
