package public

import (
	"errors"
	"time"

	handlershared "github.com/resto-next/internal/http/handlers/shared"
	"github.com/resto-next/internal/http/response"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/repository"
	"github.com/resto-next/internal/service"

	"github.com/gin-gonic/gin"
)

// DiscountSummary 折扣展示摘要
type DiscountSummary struct {
	ID         uint                         `json:"id"`
	Code       string                       `json:"code"`
	Name       string                       `json:"name"`
	Kind       string                       `json:"kind"`
	Value      models.Money                 `json:"value"`
	Window     string                       `json:"window"`
	StartsAt   *time.Time                   `json:"starts_at,omitempty"`
	EndsAt     *time.Time                   `json:"ends_at,omitempty"`
	Conditions models.DiscountConditionList `json:"conditions,omitempty"`
	ComboItems models.ComboItemList         `json:"combo_items,omitempty"`
}

// ListDiscounts 获取折扣列表，带生效窗口标记
func (h *Handler) ListDiscounts(c *gin.Context) {
	page, pageSize := handlershared.NormalizePagination(
		handlershared.QueryInt(c, "page", 1),
		handlershared.QueryInt(c, "page_size", 20),
	)
	active := true
	filter := repository.DiscountListFilter{
		Page:     page,
		PageSize: pageSize,
		Kind:     c.Query("kind"),
		IsActive: &active,
	}

	discounts, total, err := h.DiscountService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.discount_fetch_failed", err)
		return
	}

	now := time.Now()
	summaries := make([]DiscountSummary, 0, len(discounts))
	for i := range discounts {
		discount := &discounts[i]
		summaries = append(summaries, DiscountSummary{
			ID:         discount.ID,
			Code:       discount.Code,
			Name:       discount.Name,
			Kind:       discount.Kind,
			Value:      discount.Value,
			Window:     h.DiscountService.WindowState(discount, now),
			StartsAt:   discount.StartsAt,
			EndsAt:     discount.EndsAt,
			Conditions: discount.Conditions,
			ComboItems: discount.ComboItems,
		})
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, summaries, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetDiscountByCode 按折扣码查询单个折扣，带生效窗口标记
func (h *Handler) GetDiscountByCode(c *gin.Context) {
	discount, err := h.DiscountService.Resolve(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			respondError(c, response.CodeNotFound, "error.discount_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.discount_fetch_failed", err)
		return
	}
	if !discount.IsActive {
		respondError(c, response.CodeNotFound, "error.discount_not_found", nil)
		return
	}

	response.Success(c, DiscountSummary{
		ID:         discount.ID,
		Code:       discount.Code,
		Name:       discount.Name,
		Kind:       discount.Kind,
		Value:      discount.Value,
		Window:     h.DiscountService.WindowState(discount, time.Now()),
		StartsAt:   discount.StartsAt,
		EndsAt:     discount.EndsAt,
		Conditions: discount.Conditions,
		ComboItems: discount.ComboItems,
	})
}
