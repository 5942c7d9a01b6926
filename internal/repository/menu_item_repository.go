package repository

import (
	"github.com/resto-next/internal/models"

	"gorm.io/gorm"
)

// MenuItemRepository 菜单餐品数据访问接口（只读参照数据）
type MenuItemRepository interface {
	ListByIDs(ids []uint) ([]models.MenuItem, error)
	ListActive() ([]models.MenuItem, error)
}

// GormMenuItemRepository GORM 实现
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewMenuItemRepository 创建菜单餐品仓库
func NewMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// ListByIDs 批量获取餐品
func (r *GormMenuItemRepository) ListByIDs(ids []uint) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return []models.MenuItem{}, nil
	}
	var items []models.MenuItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListActive 获取在售餐品
func (r *GormMenuItemRepository) ListActive() ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.Where("is_active = ?", true).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
