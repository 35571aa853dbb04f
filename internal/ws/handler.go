package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-demo/gamehub/internal/pkg/roomcode"
	"github.com/go-demo/gamehub/internal/pkg/utils"
	"github.com/go-demo/gamehub/internal/service"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Application close codes for failed handshakes. The relay has no response
// channel once the upgrade happened, so gate failures close the connection
// with a coded reason instead.
const (
	CloseUnauthorized = 4001
	CloseForbidden    = 4003
	CloseRoomNotFound = 4004
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// In production, you should check the origin
		return true
	},
}

// Handler handles relay WebSocket connections
type Handler struct {
	registry    *Registry
	roomService *service.RoomService
	jwtManager  *utils.JWTManager
	logger      *zap.Logger
}

// NewHandler creates a new relay handler
func NewHandler(registry *Registry, roomService *service.RoomService, jwtManager *utils.JWTManager, logger *zap.Logger) *Handler {
	return &Handler{
		registry:    registry,
		roomService: roomService,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// ServeRoomWS upgrades the connection and walks the handshake gates:
// authenticate the token, look up the room, verify membership. Joining is a
// separate prior HTTP call; the relay never joins implicitly.
// @Summary 房間即時連線
// @Description 建立房間的 WebSocket 連線，轉發玩家間訊息
// @Tags WebSocket
// @Param code path string true "房間代碼"
// @Param token query string true "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/v1/rooms/{code}/ws [get]
func (h *Handler) ServeRoomWS(c *gin.Context) {
	code := roomcode.Canonicalize(c.Param("code"))
	token := c.Query("token")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}

	claims, err := h.jwtManager.ValidateAccessToken(token)
	if err != nil {
		h.logger.Warn("Relay auth failed", zap.String("code", code), zap.Error(err))
		h.closeWith(conn, CloseUnauthorized, "unauthorized")
		return
	}

	room, err := h.roomService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.closeWith(conn, CloseRoomNotFound, "room not found")
		return
	}

	isPlayer, err := h.roomService.IsPlayer(c.Request.Context(), room.ID, claims.UserID)
	if err != nil || !isPlayer {
		h.logger.Warn("Relay membership gate failed",
			zap.String("code", code),
			zap.String("user_id", claims.UserID),
		)
		h.closeWith(conn, CloseForbidden, "forbidden")
		return
	}

	client := NewClient(h.registry, conn, code, room.ID, claims.UserID, h.logger)
	h.registry.Register(code, client)

	h.logger.Info("Relay connection established",
		zap.String("code", code),
		zap.String("user_id", claims.UserID),
	)

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

// GetStats returns registry statistics
// @Summary 獲取即時連線統計資訊
// @Description 獲取目前活躍房間與連線數
// @Tags WebSocket
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /api/v1/ws/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.registry.Stats(),
	})
}
