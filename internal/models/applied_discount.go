package models

import (
	"time"

	"gorm.io/gorm"
)

// AppliedDiscount 折扣套用流水（每张小票对同一折扣至多一条，只追加不修改）
type AppliedDiscount struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                               // 主键
	ReceiptID          uint           `gorm:"uniqueIndex:idx_receipt_discount;not null" json:"receipt_id"`        // 小票ID
	DiscountID         uint           `gorm:"uniqueIndex:idx_receipt_discount;not null" json:"discount_id"`       // 折扣ID
	DiscountName       string         `gorm:"not null" json:"discount_name"`                                      // 名称快照
	Kind               string         `gorm:"not null" json:"kind"`                                               // 类型快照
	ValueAtApplication Money          `gorm:"type:decimal(20,2);not null;default:0" json:"value_at_application"`  // 套用时的折扣数值
	AmountSaved        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount_saved"`          // 节省金额
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间
}

// TableName 指定表名
func (AppliedDiscount) TableName() string {
	return "applied_discounts"
}
