package staff

import (
	"time"

	handlershared "github.com/resto-next/internal/http/handlers/shared"
	"github.com/resto-next/internal/http/response"
	"github.com/resto-next/internal/repository"
	"github.com/resto-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReceiptItemRequest 开票条目请求
type CreateReceiptItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// CreateReceiptRequest 开票请求
type CreateReceiptRequest struct {
	TableNo string                     `json:"table_no"`
	Items   []CreateReceiptItemRequest `json:"items" binding:"required"`
}

// DiscountCodeRequest 折扣码请求
type DiscountCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// CreateReceipt 开票
func (h *Handler) CreateReceipt(c *gin.Context) {
	var req CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items := make([]service.CreateReceiptItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateReceiptItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	receipt, err := h.ReceiptService.CreateReceipt(service.CreateReceiptInput{
		TableNo: req.TableNo,
		Items:   items,
	})
	if err != nil {
		respondReceiptCreateError(c, err)
		return
	}
	response.Success(c, receipt)
}

// GetReceipt 获取小票详情
func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	receipt, err := h.ReceiptService.GetReceipt(id)
	if err != nil {
		respondReceiptFetchError(c, err)
		return
	}
	response.Success(c, receipt)
}

// ListReceipts 获取小票列表
func (h *Handler) ListReceipts(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	filter := repository.ReceiptListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		TableNo:  c.Query("table_no"),
		OnlyOpen: c.Query("only_open") == "true",
	}

	receipts, total, err := h.ReceiptService.ListReceipts(filter)
	if err != nil {
		respondReceiptFetchError(c, err)
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, receipts, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// PreviewDiscount 折扣试算：仅判定与计算，不改动小票
func (h *Handler) PreviewDiscount(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req DiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.ReceiptService.PreviewDiscount(id, req.Code, time.Now())
	if err != nil {
		respondDiscountApplyError(c, err)
		return
	}
	response.Success(c, result)
}

// ApplyDiscount 套用折扣
func (h *Handler) ApplyDiscount(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req DiscountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.ReceiptService.ApplyDiscount(id, req.Code, time.Now())
	if err != nil {
		respondDiscountApplyError(c, err)
		return
	}
	response.Success(c, result)
}

// CompleteReceipt 结单
func (h *Handler) CompleteReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	receipt, err := h.ReceiptService.CompleteReceipt(id)
	if err != nil {
		respondReceiptFetchError(c, err)
		return
	}
	response.Success(c, receipt)
}
