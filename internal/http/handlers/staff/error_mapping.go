package staff

import (
	"errors"

	handlershared "github.com/resto-next/internal/http/handlers/shared"
	"github.com/resto-next/internal/http/response"
	"github.com/resto-next/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var receiptCommonErrorRules = []mappedHandlerError{
	{target: service.ErrReceiptNotFound, code: response.CodeNotFound, key: "error.receipt_not_found"},
	{target: service.ErrReceiptCompleted, code: response.CodeConflict, key: "error.receipt_completed"},
	{target: service.ErrStoreUnavailable, code: response.CodeDependency, key: "error.store_unavailable"},
}

var receiptCreateErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidReceiptItem, code: response.CodeBadRequest, key: "error.receipt_item_invalid"},
	{target: service.ErrMenuItemNotFound, code: response.CodeBadRequest, key: "error.menu_item_not_found"},
	{target: service.ErrStoreUnavailable, code: response.CodeDependency, key: "error.store_unavailable"},
}

var discountApplyErrorRules = append([]mappedHandlerError{
	{target: service.ErrDiscountNotFound, code: response.CodeNotFound, key: "error.discount_not_found"},
	{target: service.ErrDiscountInactive, code: response.CodeBadRequest, key: "error.discount_inactive"},
	{target: service.ErrDiscountNotStarted, code: response.CodeBadRequest, key: "error.discount_not_started"},
	{target: service.ErrDiscountExpired, code: response.CodeBadRequest, key: "error.discount_expired"},
	{target: service.ErrDiscountUsageLimit, code: response.CodeBadRequest, key: "error.discount_usage_limit"},
	{target: service.ErrDiscountConditions, code: response.CodeBadRequest, key: "error.discount_conditions_not_met"},
	{target: service.ErrDiscountComboMissing, code: response.CodeBadRequest, key: "error.discount_combo_missing"},
	{target: service.ErrDiscountInvalid, code: response.CodeBadRequest, key: "error.discount_invalid"},
	{target: service.ErrDuplicateApplication, code: response.CodeConflict, key: "error.duplicate_application"},
	{target: service.ErrUsageRaceLost, code: response.CodeConflict, key: "error.usage_conflict"},
}, receiptCommonErrorRules...)

var itemStatusErrorRules = append([]mappedHandlerError{
	{target: service.ErrReceiptItemNotFound, code: response.CodeNotFound, key: "error.receipt_item_not_found"},
	{target: service.ErrInvalidItemStatus, code: response.CodeBadRequest, key: "error.item_status_invalid"},
	{target: service.ErrInvalidTransition, code: response.CodeUnprocessable, key: "error.item_transition_invalid"},
}, receiptCommonErrorRules...)

func respondReceiptCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, receiptCreateErrorRules, response.CodeInternal, "error.receipt_create_failed")
}

func respondReceiptFetchError(c *gin.Context, err error) {
	respondWithMappedError(c, err, receiptCommonErrorRules, response.CodeInternal, "error.receipt_fetch_failed")
}

func respondDiscountApplyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, discountApplyErrorRules, response.CodeInternal, "error.discount_apply_failed")
}

func respondItemStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, itemStatusErrorRules, response.CodeInternal, "error.item_status_update_failed")
}
