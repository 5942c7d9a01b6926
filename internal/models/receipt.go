package models

import (
	"time"

	"gorm.io/gorm"
)

// Receipt 小票（一次点单）
type Receipt struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                       // 主键
	ReceiptNo     string         `gorm:"uniqueIndex;not null" json:"receipt_no"`                     // 小票编号
	TableNo       string         `gorm:"index" json:"table_no,omitempty"`                            // 桌号
	Status        string         `gorm:"index;not null" json:"status"`                               // 汇总状态（由条目状态折算）
	Subtotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 折扣前小计
	DiscountTotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_total"` // 折扣总额
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`  // 实收金额
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at,omitempty"`                        // 结单时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Items            []ReceiptItem     `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`             // 餐品条目
	AppliedDiscounts []AppliedDiscount `gorm:"foreignKey:ReceiptID" json:"applied_discounts,omitempty"` // 折扣流水
}

// TableName 指定表名
func (Receipt) TableName() string {
	return "receipts"
}

// IsCompleted 是否已结单
func (r *Receipt) IsCompleted() bool {
	return r != nil && r.CompletedAt != nil
}
