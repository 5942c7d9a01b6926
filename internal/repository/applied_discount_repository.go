package repository

import (
	"github.com/resto-next/internal/models"

	"gorm.io/gorm"
)

// AppliedDiscountRepository 折扣流水数据访问接口
type AppliedDiscountRepository interface {
	Create(entry *models.AppliedDiscount) error
	ListByReceiptID(receiptID uint) ([]models.AppliedDiscount, error)
	ExistsForReceipt(receiptID, discountID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormAppliedDiscountRepository
}

// GormAppliedDiscountRepository GORM 实现
type GormAppliedDiscountRepository struct {
	db *gorm.DB
}

// NewAppliedDiscountRepository 创建折扣流水仓库
func NewAppliedDiscountRepository(db *gorm.DB) *GormAppliedDiscountRepository {
	return &GormAppliedDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAppliedDiscountRepository) WithTx(tx *gorm.DB) *GormAppliedDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormAppliedDiscountRepository{db: tx}
}

// Create 追加流水记录
func (r *GormAppliedDiscountRepository) Create(entry *models.AppliedDiscount) error {
	return r.db.Create(entry).Error
}

// ListByReceiptID 获取小票的全部流水（按套用顺序）
func (r *GormAppliedDiscountRepository) ListByReceiptID(receiptID uint) ([]models.AppliedDiscount, error) {
	var entries []models.AppliedDiscount
	if err := r.db.Where("receipt_id = ?", receiptID).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistsForReceipt 判断该小票是否已套用过该折扣
func (r *GormAppliedDiscountRepository) ExistsForReceipt(receiptID, discountID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.AppliedDiscount{}).
		Where("receipt_id = ? AND discount_id = ?", receiptID, discountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
