package public

import (
	"github.com/resto-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// KitchenBoard 后厨看板：全部未结单小票及其条目状态
func (h *Handler) KitchenBoard(c *gin.Context) {
	entries, err := h.KitchenService.Board()
	if err != nil {
		respondError(c, response.CodeInternal, "error.kitchen_board_failed", err)
		return
	}
	response.Success(c, entries)
}
