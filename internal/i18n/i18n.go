package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// LocaleZhCN 简体中文
	LocaleZhCN = "zh-CN"
	// LocaleEnUS 英文
	LocaleEnUS = "en-US"
	// DefaultLocale 默认语言
	DefaultLocale = LocaleZhCN
)

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                 "请求参数无效",
		"error.internal_error":              "服务器内部错误",
		"error.store_unavailable":           "数据服务暂不可用，请稍后重试",
		"error.rate_limited":                "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":      "限流服务暂不可用",
		"error.discount_not_found":          "折扣码不存在",
		"error.discount_inactive":           "该折扣已停用",
		"error.discount_not_started":        "该折扣尚未生效",
		"error.discount_expired":            "该折扣已过期",
		"error.discount_usage_limit":        "该折扣使用次数已达上限",
		"error.discount_conditions_not_met": "不满足折扣使用条件",
		"error.discount_combo_missing":      "套餐折扣所需菜品数量不足",
		"error.discount_invalid":            "折扣配置无效",
		"error.discount_fetch_failed":       "折扣查询失败",
		"error.duplicate_application":       "该折扣已在本单使用过",
		"error.usage_conflict":              "折扣额度已被占用，请重试",
		"error.discount_apply_failed":       "折扣使用失败",
		"error.receipt_not_found":           "小票不存在",
		"error.receipt_completed":           "小票已结单",
		"error.receipt_item_not_found":      "小票条目不存在",
		"error.receipt_item_invalid":        "小票条目无效",
		"error.menu_item_not_found":         "菜品不存在或已下架",
		"error.receipt_create_failed":       "开票失败",
		"error.receipt_fetch_failed":        "小票查询失败",
		"error.item_status_invalid":         "条目状态无效",
		"error.item_transition_invalid":     "条目状态不允许回退",
		"error.item_status_update_failed":   "条目状态更新失败",
		"error.kitchen_board_failed":        "后厨看板加载失败",
	},
	LocaleEnUS: {
		"error.bad_request":                 "Invalid request parameters",
		"error.internal_error":              "Internal server error",
		"error.store_unavailable":           "Data store temporarily unavailable, please retry",
		"error.rate_limited":                "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter temporarily unavailable",
		"error.discount_not_found":          "Discount code not found",
		"error.discount_inactive":           "Discount is inactive",
		"error.discount_not_started":        "Discount is not yet valid",
		"error.discount_expired":            "Discount has expired",
		"error.discount_usage_limit":        "Discount usage limit reached",
		"error.discount_conditions_not_met": "Discount conditions not met",
		"error.discount_combo_missing":      "Receipt does not contain the required combo items",
		"error.discount_invalid":            "Discount configuration is invalid",
		"error.discount_fetch_failed":       "Failed to fetch discounts",
		"error.duplicate_application":       "Discount already applied to this receipt",
		"error.usage_conflict":              "Discount usage was taken concurrently, please retry",
		"error.discount_apply_failed":       "Failed to apply discount",
		"error.receipt_not_found":           "Receipt not found",
		"error.receipt_completed":           "Receipt already completed",
		"error.receipt_item_not_found":      "Receipt item not found",
		"error.receipt_item_invalid":        "Receipt item is invalid",
		"error.menu_item_not_found":         "Menu item not found or inactive",
		"error.receipt_create_failed":       "Failed to create receipt",
		"error.receipt_fetch_failed":        "Failed to fetch receipt",
		"error.item_status_invalid":         "Invalid item status",
		"error.item_transition_invalid":     "Item status cannot move backwards",
		"error.item_status_update_failed":   "Failed to update item status",
		"error.kitchen_board_failed":        "Failed to load kitchen board",
	},
}

// T 按语言取文案，取不到时回退默认语言，再取不到返回 key 本身
func T(locale, key string) string {
	if table, ok := messages[normalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 按语言取带占位符的文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// ResolveLocale 解析请求语言：query 参数优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return normalizeLocale(locale)
	}
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		for _, part := range strings.Split(accept, ",") {
			lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
			if lang == "" {
				continue
			}
			return normalizeLocale(lang)
		}
	}
	return DefaultLocale
}

func normalizeLocale(locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "zh", "zh-cn", "zh-hans":
		return LocaleZhCN
	case "en", "en-us":
		return LocaleEnUS
	default:
		return DefaultLocale
	}
}
