package floor

import (
	"net/http"

	"dinein/internal/domain"
	"dinein/internal/pkg/jwt"
	"dinein/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	tokens   *jwt.Service
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from the given origins. An empty list allows
// any origin.
func NewHandler(hub *Hub, tokens *jwt.Service, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes mounts GET /floor/ws. Browsers cannot set headers on a
// websocket handshake, so the staff token travels as ?token=.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/floor/ws", h.Serve)
}

func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if _, err := domain.ParseRole(claims.Role); err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.loggerf("level=warn msg=floor upgrade failed user_id=%d err=%v", claims.UserID, err)
		return
	}

	h.hub.loggerf("level=info msg=floor screen connected user_id=%d", claims.UserID)
	h.hub.ServeWS(conn, claims.UserID)
	h.hub.loggerf("level=info msg=floor screen disconnected user_id=%d", claims.UserID)
}
