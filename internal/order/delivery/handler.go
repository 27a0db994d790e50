package delivery

import (
	"net/http"
	"strconv"

	orderdomain "sellerops-backend/internal/order/domain"
	"sellerops-backend/internal/order/scheduler"
	"sellerops-backend/internal/order/usecase"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUsecase
	syncUsecase  usecase.SyncUsecase
	syncSched    *scheduler.SyncScheduler
}

func NewOrderHandler(orderUsecase usecase.OrderUsecase, syncUsecase usecase.SyncUsecase, syncSched *scheduler.SyncScheduler) *OrderHandler {
	return &OrderHandler{
		orderUsecase: orderUsecase,
		syncUsecase:  syncUsecase,
		syncSched:    syncSched,
	}
}

// TriggerSync requests a full sync pass over all accounts
func (h *OrderHandler) TriggerSync(c *gin.Context) {
	if !h.syncSched.TriggerSync() {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already running"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sync triggered"})
}

// TriggerAccountSync runs the pipeline for one account synchronously and
// returns its run record
func (h *OrderHandler) TriggerAccountSync(c *gin.Context) {
	accountID := c.Param("id")

	run, err := h.syncUsecase.SyncAccount(c.Request.Context(), accountID)
	if err != nil && run == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit, offset := pagination(c)
	orders, total, err := h.orderUsecase.ListOrders(c.Query("account_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderUsecase.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateNotes(c *gin.Context) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderUsecase.UpdateNotes(c.Param("id"), req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetAutoFlagSettings(c *gin.Context) {
	settings, err := h.orderUsecase.GetAutoFlagSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *OrderHandler) UpdateAutoFlagSettings(c *gin.Context) {
	var req orderdomain.AutoFlagSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	settings, err := h.orderUsecase.UpdateAutoFlagSettings(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *OrderHandler) ListSyncRuns(c *gin.Context) {
	limit, offset := pagination(c)
	runs, total, err := h.orderUsecase.ListSyncRuns(c.Query("account_id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *OrderHandler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.syncSched.IsRunning()})
}

func pagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
