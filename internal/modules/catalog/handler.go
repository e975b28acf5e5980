package catalog

import (
	"net/http"
	"strconv"

	"dinein/internal/middleware"
	"dinein/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog. Reads are open to staff, writes need
// the manager role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	managers := middleware.ManagerOnly()

	tables := rg.Group("/tables")
	{
		tables.GET("", h.ListTables)
		tables.POST("", managers, h.CreateTable)
		tables.PUT("/:id", managers, h.UpdateTable)
	}

	menu := rg.Group("/menu-items")
	{
		menu.GET("", h.ListMenuItems)
		menu.POST("", managers, h.CreateMenuItem)
		menu.PUT("/:id", managers, h.UpdateMenuItem)
	}

	waiters := rg.Group("/waiters")
	{
		waiters.GET("", h.ListWaiters)
		waiters.POST("", managers, h.CreateWaiter)
		waiters.PUT("/:id", managers, h.UpdateWaiter)
	}
}

/* ---------- TABLES ---------- */

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.service.ListTables(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tables": tables})
}

func (h *Handler) CreateTable(c *gin.Context) {
	h.saveTable(c, nil, http.StatusCreated)
}

func (h *Handler) UpdateTable(c *gin.Context) {
	id, ok := parseID(c, "table")
	if !ok {
		return
	}
	h.saveTable(c, &id, http.StatusOK)
}

func (h *Handler) saveTable(c *gin.Context, id *int64, status int) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "number and capacity are required")
		return
	}

	table, err := h.service.UpsertTable(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, status, gin.H{"table": table})
}

/* ---------- MENU ---------- */

func (h *Handler) ListMenuItems(c *gin.Context) {
	items, err := h.service.ListMenuItems(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"menu_items": items})
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	h.saveMenuItem(c, nil, http.StatusCreated)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "menu item")
	if !ok {
		return
	}
	h.saveMenuItem(c, &id, http.StatusOK)
}

func (h *Handler) saveMenuItem(c *gin.Context, id *int64, status int) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name, price and categories are required")
		return
	}

	item, err := h.service.UpsertMenuItem(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, status, gin.H{"menu_item": item})
}

/* ---------- WAITERS ---------- */

func (h *Handler) ListWaiters(c *gin.Context) {
	waiters, err := h.service.ListWaiters(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"waiters": waiters})
}

func (h *Handler) CreateWaiter(c *gin.Context) {
	h.saveWaiter(c, nil, http.StatusCreated)
}

func (h *Handler) UpdateWaiter(c *gin.Context) {
	id, ok := parseID(c, "waiter")
	if !ok {
		return
	}
	h.saveWaiter(c, &id, http.StatusOK)
}

func (h *Handler) saveWaiter(c *gin.Context, id *int64, status int) {
	var req WaiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name and email are required")
		return
	}

	user, err := h.service.UpsertWaiter(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, status, gin.H{"waiter": user})
}

func parseID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}
