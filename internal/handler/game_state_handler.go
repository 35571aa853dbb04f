package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-demo/gamehub/internal/dto/request"
	"github.com/go-demo/gamehub/internal/dto/response"
	"github.com/go-demo/gamehub/internal/middleware"
	"github.com/go-demo/gamehub/internal/pkg/utils"
	"github.com/go-demo/gamehub/internal/service"
)

type GameStateHandler struct {
	gameStateService *service.GameStateService
}

func NewGameStateHandler(gameStateService *service.GameStateService) *GameStateHandler {
	return &GameStateHandler{
		gameStateService: gameStateService,
	}
}

// List godoc
// @Summary 列出存檔
// @Description 列出當前用戶在指定遊戲的所有存檔
// @Tags 存檔
// @Produce json
// @Security BearerAuth
// @Param game_id path string true "遊戲 ID"
// @Success 200 {object} response.Response{data=response.GameStateListResponse}
// @Failure 401 {object} response.Response
// @Router /api/v1/games/{game_id}/state [get]
func (h *GameStateHandler) List(c *gin.Context) {
	gameID := c.Param("game_id")

	states, err := h.gameStateService.List(c.Request.Context(), middleware.GetUserID(c), gameID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewGameStateListResponse(gameID, states))
}

// Get godoc
// @Summary 讀取存檔
// @Description 讀取指定存檔欄位
// @Tags 存檔
// @Produce json
// @Security BearerAuth
// @Param game_id path string true "遊戲 ID"
// @Param slot path string true "存檔欄位名稱"
// @Success 200 {object} response.Response{data=response.GameStateResponse}
// @Failure 404 {object} response.Response
// @Router /api/v1/games/{game_id}/state/{slot} [get]
func (h *GameStateHandler) Get(c *gin.Context) {
	state, err := h.gameStateService.Get(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Param("game_id"),
		c.Param("slot"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewGameStateResponse(state))
}

// Save godoc
// @Summary 寫入存檔
// @Description 創建或覆寫指定存檔欄位
// @Tags 存檔
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param game_id path string true "遊戲 ID"
// @Param slot path string true "存檔欄位名稱"
// @Param request body request.SaveGameStateRequest true "存檔資料"
// @Success 200 {object} response.Response{data=response.GameStateResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/games/{game_id}/state/{slot} [put]
func (h *GameStateHandler) Save(c *gin.Context) {
	var req request.SaveGameStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "請求格式錯誤")
		return
	}

	gameID := c.Param("game_id")
	slotName := c.Param("slot")

	v := utils.NewValidator()
	v.ValidateGameID("game_id", gameID)
	v.ValidateSlotName("slot", slotName)

	if v.HasErrors() {
		response.ValidationError(c, v.Errors())
		return
	}

	state, err := h.gameStateService.Save(c.Request.Context(), &service.SaveInput{
		UserID:    middleware.GetUserID(c),
		GameID:    gameID,
		SlotName:  slotName,
		StateData: req.StateData,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewGameStateResponse(state))
}

// Delete godoc
// @Summary 刪除存檔
// @Description 刪除指定存檔欄位
// @Tags 存檔
// @Produce json
// @Security BearerAuth
// @Param game_id path string true "遊戲 ID"
// @Param slot path string true "存檔欄位名稱"
// @Success 204 {string} string "No Content"
// @Failure 404 {object} response.Response
// @Router /api/v1/games/{game_id}/state/{slot} [delete]
func (h *GameStateHandler) Delete(c *gin.Context) {
	err := h.gameStateService.Delete(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Param("game_id"),
		c.Param("slot"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
