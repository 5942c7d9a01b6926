package repository

import "time"

// DiscountListFilter 查询折扣列表的过滤条件
type DiscountListFilter struct {
	Page     int
	PageSize int
	Code     string
	Kind     string
	IsActive *bool
}

// ReceiptListFilter 查询小票列表的过滤条件
type ReceiptListFilter struct {
	Page        int
	PageSize    int
	Status      string
	TableNo     string
	OnlyOpen    bool // 只看未结单
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
