package service

import (
	"errors"
	"fmt"
	"strings"
)

// 业务错误定义。均为可预期、可向操作员展示的结果，不致命；
// handler 层通过 errors.Is 映射为响应码与文案。
var (
	// 折扣资格判定失败原因
	ErrDiscountNotFound     = errors.New("discount not found")
	ErrDiscountInactive     = errors.New("discount inactive")
	ErrDiscountNotStarted   = errors.New("discount not started")
	ErrDiscountExpired      = errors.New("discount expired")
	ErrDiscountUsageLimit   = errors.New("discount usage limit reached")
	ErrDiscountConditions   = errors.New("discount conditions not met")
	ErrDiscountComboMissing = errors.New("discount combo items missing")
	ErrDiscountInvalid      = errors.New("discount invalid")

	// 折扣套用
	ErrDuplicateApplication = errors.New("discount already applied to receipt")
	ErrUsageRaceLost        = errors.New("discount usage consumed concurrently")

	// 小票与条目
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrReceiptCompleted    = errors.New("receipt already completed")
	ErrReceiptItemNotFound = errors.New("receipt item not found")
	ErrInvalidReceiptItem  = errors.New("invalid receipt item")
	ErrMenuItemNotFound    = errors.New("menu item not found")

	// 后厨状态机
	ErrInvalidItemStatus = errors.New("invalid item status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ErrStoreUnavailable 外部存储不可用。与业务拒绝严格区分：
// 调用方可以重试本错误，但绝不自动重试业务拒绝。
var ErrStoreUnavailable = errors.New("store unavailable")

// storeErr 包装存储层错误
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// isUniqueViolation 识别唯一约束冲突（sqlite 报 UNIQUE，postgres 报 duplicate key）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
