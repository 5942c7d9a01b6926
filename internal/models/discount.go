package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 折扣活动
type Discount struct {
	ID         uint                  `gorm:"primarykey" json:"id"`                            // 主键
	Code       string                `gorm:"uniqueIndex;not null" json:"code"`                // 折扣码（匹配时不区分大小写）
	Name       string                `gorm:"not null" json:"name"`                            // 名称
	Kind       string                `gorm:"not null" json:"kind"`                            // 类型（fixed/percent/combo）
	Value      Money                 `gorm:"type:decimal(20,2);not null" json:"value"`        // 数值（固定金额或百分比，combo 不使用）
	UsageLimit int                   `gorm:"not null;default:0" json:"usage_limit"`           // 总使用上限（0 表示不限制）
	UsedCount  int                   `gorm:"not null;default:0" json:"used_count"`            // 已使用次数
	StartsAt   *time.Time            `gorm:"index" json:"starts_at"`                          // 生效时间（含）
	EndsAt     *time.Time            `gorm:"index" json:"ends_at"`                            // 失效时间（含）
	IsActive   bool                  `gorm:"not null;default:true" json:"is_active"`          // 是否启用
	Conditions DiscountConditionList `gorm:"type:json" json:"conditions,omitempty"`           // 附加条件（全部满足才可用）
	ComboItems ComboItemList         `gorm:"type:json" json:"combo_items,omitempty"`          // 套餐要求（仅 combo 类型）
	CreatedAt  time.Time             `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt  time.Time             `gorm:"index" json:"updated_at"`                         // 更新时间
	DeletedAt  gorm.DeletedAt        `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}
