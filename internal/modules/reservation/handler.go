package reservation

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

// RegisterPublicRoutes exposes online booking.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/reservations", h.Create)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reservations")
	{
		g.GET("", h.List)
		g.GET("/free-tables", h.FreeTables)
		g.GET("/:id", h.Get)
		g.GET("/:id/free-tables", h.FreeTablesFor)
		g.POST("/:id/allot", h.AllotTable)
		g.POST("/:id/cancel", h.Cancel)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"reservation": res})
}

func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}

	list, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservations": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) FreeTables(c *gin.Context) {
	var q FreeTablesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date, start, end and party_size are required")
		return
	}

	tables, err := h.service.FreeTables(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tables": tables})
}

func (h *Handler) FreeTablesFor(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	tables, err := h.service.FreeTablesFor(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tables": tables})
}

func (h *Handler) AllotTable(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req AllotTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "table_id and waiter_id are required")
		return
	}

	res, err := h.service.AllotTable(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	res, err := h.service.Cancel(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

// ParseID reads the :id path parameter and writes a 400 when it is not a
// positive integer.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid reservation ID")
		return 0, false
	}
	return id, true
}
