package billing

import (
	"net/http"

	"dinein/internal/middleware"
	"dinein/internal/modules/reservation"
	"dinein/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reservations/:id")
	{
		g.GET("/order", h.GetOrder)
		g.POST("/order/items", h.AddItem)
		g.PUT("/order/items", h.UpdateItem)
		g.POST("/order/send-to-kitchen", h.SendToKitchen)

		g.GET("/bill", h.GetBill)
		g.POST("/bill", h.GenerateBill)
		g.POST("/bill/payments", h.RecordPayment)
	}
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}

func (h *Handler) AddItem(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "menu_item_id and quantity are required")
		return
	}

	order, err := h.service.AddItem(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	var req ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "menu_item_id and quantity are required")
		return
	}

	order, err := h.service.UpdateItem(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}

func (h *Handler) SendToKitchen(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	order, err := h.service.SendToKitchen(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"order": order})
}

func (h *Handler) GetBill(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	bill, err := h.service.GetBill(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bill": bill})
}

func (h *Handler) GenerateBill(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	// empty body means no tip and a single payer
	var req GenerateBillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	bill, err := h.service.GenerateBill(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"bill": bill})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := reservation.ParseID(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "amount and method are required")
		return
	}

	bill, err := h.service.RecordPayment(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bill": bill})
}
