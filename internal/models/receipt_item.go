package models

import (
	"time"

	"gorm.io/gorm"
)

// ReceiptItem 小票餐品条目
type ReceiptItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ReceiptID  uint           `gorm:"index;not null" json:"receipt_id"`                         // 小票ID
	MenuItemID uint           `gorm:"index;not null" json:"menu_item_id"`                       // 菜单餐品ID
	Name       string         `gorm:"not null" json:"name"`                                     // 名称快照
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	Quantity   int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	Status     string         `gorm:"index;not null" json:"status"`                             // 制作状态（pending/preparing/ready/done）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (ReceiptItem) TableName() string {
	return "receipt_items"
}
