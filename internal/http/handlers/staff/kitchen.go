package staff

import (
	handlershared "github.com/resto-next/internal/http/handlers/shared"
	"github.com/resto-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UpdateItemStatusRequest 条目状态推进请求
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateItemStatus 推进小票条目状态
func (h *Handler) UpdateItemStatus(c *gin.Context) {
	receiptID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "item_id")
	if !ok {
		return
	}
	var req UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.KitchenService.UpdateItemStatus(receiptID, itemID, req.Status)
	if err != nil {
		respondItemStatusError(c, err)
		return
	}
	response.Success(c, result)
}
