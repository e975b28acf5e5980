package auth

import (
	"errors"
	"net/http"

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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.Me)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":         toPublic(res.User),
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   int64(res.ExpiresIn.Seconds()),
	})
}

func (h *Handler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	user, err := h.service.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": toPublic(user)})
}
