package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-demo/gamehub/internal/dto/request"
	"github.com/go-demo/gamehub/internal/dto/response"
	"github.com/go-demo/gamehub/internal/middleware"
	"github.com/go-demo/gamehub/internal/pkg/utils"
	"github.com/go-demo/gamehub/internal/service"
	"github.com/go-demo/gamehub/internal/ws"
)

const defaultMaxPlayers = 4

type RoomHandler struct {
	roomService *service.RoomService
	registry    *ws.Registry
}

func NewRoomHandler(roomService *service.RoomService, registry *ws.Registry) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		registry:    registry,
	}
}

// Create godoc
// @Summary 創建房間
// @Description 創建新的遊戲房間並產生加入代碼
// @Tags 房間
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateRoomRequest true "房間資料"
// @Success 201 {object} response.Response{data=response.RoomResponse}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "請求格式錯誤")
		return
	}

	v := utils.NewValidator()
	v.ValidateGameID("game_id", req.GameID)
	if req.MaxPlayers != 0 {
		v.ValidateMaxPlayers("max_players", req.MaxPlayers)
	}

	if v.HasErrors() {
		response.ValidationError(c, v.Errors())
		return
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = defaultMaxPlayers
	}

	room, err := h.roomService.Create(c.Request.Context(), &service.CreateRoomInput{
		GameID:     req.GameID,
		HostUserID: middleware.GetUserID(c),
		MaxPlayers: maxPlayers,
		IsPrivate:  req.IsPrivate,
		RoomData:   req.RoomData,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, response.NewRoomResponse(room))
}

// Join godoc
// @Summary 加入房間
// @Description 使用房間代碼加入房間，代碼不分大小寫
// @Tags 房間
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.JoinRoomRequest true "加入資料"
// @Success 200 {object} response.Response{data=response.RoomResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/rooms/join [post]
func (h *RoomHandler) Join(c *gin.Context) {
	var req request.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "請求格式錯誤")
		return
	}

	room, err := h.roomService.Join(c.Request.Context(), req.Code, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomResponse(room))
}

// GetByCode godoc
// @Summary 獲取房間資訊
// @Description 使用房間代碼查詢房間
// @Tags 房間
// @Produce json
// @Security BearerAuth
// @Param code path string true "房間代碼"
// @Success 200 {object} response.Response{data=response.RoomResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{code} [get]
func (h *RoomHandler) GetByCode(c *gin.Context) {
	room, err := h.roomService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomResponse(room))
}

// Start godoc
// @Summary 開始遊戲
// @Description 房主將房間標記為遊戲中並廣播開始事件
// @Tags 房間
// @Produce json
// @Security BearerAuth
// @Param code path string true "房間代碼"
// @Success 200 {object} response.Response{data=response.RoomResponse}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{code}/start [post]
func (h *RoomHandler) Start(c *gin.Context) {
	room, err := h.roomService.Start(c.Request.Context(), c.Param("code"), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	// Connected players learn about the transition through the relay
	h.registry.Broadcast(room.Code, ws.NewGameStartedEvent())

	response.Success(c, response.NewRoomResponse(room))
}
