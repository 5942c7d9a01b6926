package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem 菜单餐品（本服务只读，用于开票与套餐校验的参照数据）
type MenuItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                           // 主键
	Name      string         `gorm:"not null" json:"name"`                           // 名称
	Price     Money          `gorm:"type:decimal(20,2);not null" json:"price"`       // 售价
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`         // 是否在售
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (MenuItem) TableName() string {
	return "menu_items"
}
