package repository

import (
	"errors"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/models"

	"gorm.io/gorm"
)

// ReceiptRepository 小票数据访问接口
type ReceiptRepository interface {
	GetByID(id uint) (*models.Receipt, error)
	GetByReceiptNo(receiptNo string) (*models.Receipt, error)
	GetItem(receiptID, itemID uint) (*models.ReceiptItem, error)
	Create(receipt *models.Receipt) error
	List(filter ReceiptListFilter) ([]models.Receipt, int64, error)
	ListOpen() ([]models.Receipt, error)
	UpdateItemStatus(itemID uint, status string) error
	UpdateStatus(id uint, updates map[string]interface{}) error
	UpdateTotals(id uint, discountTotal, totalAmount models.Money) error
	WithTx(tx *gorm.DB) *GormReceiptRepository
}

// GormReceiptRepository GORM 实现
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建小票仓库
func NewReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReceiptRepository) WithTx(tx *gorm.DB) *GormReceiptRepository {
	if tx == nil {
		return r
	}
	return &GormReceiptRepository{db: tx}
}

// GetByID 根据ID获取小票（含条目与折扣流水）
func (r *GormReceiptRepository) GetByID(id uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("receipt_items.id asc") }).
		Preload("AppliedDiscounts", func(db *gorm.DB) *gorm.DB { return db.Order("applied_discounts.id asc") }).
		First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByReceiptNo 根据编号获取小票
func (r *GormReceiptRepository) GetByReceiptNo(receiptNo string) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("receipt_items.id asc") }).
		Preload("AppliedDiscounts", func(db *gorm.DB) *gorm.DB { return db.Order("applied_discounts.id asc") }).
		Where("receipt_no = ?", receiptNo).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// GetItem 获取小票下的单个条目
func (r *GormReceiptRepository) GetItem(receiptID, itemID uint) (*models.ReceiptItem, error) {
	var item models.ReceiptItem
	if err := r.db.
		Where("receipt_id = ? AND id = ?", receiptID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建小票（连同条目）
func (r *GormReceiptRepository) Create(receipt *models.Receipt) error {
	return r.db.Create(receipt).Error
}

// List 获取小票列表
func (r *GormReceiptRepository) List(filter ReceiptListFilter) ([]models.Receipt, int64, error) {
	var receipts []models.Receipt
	query := r.db.Model(&models.Receipt{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TableNo != "" {
		query = query.Where("table_no = ?", filter.TableNo)
	}
	if filter.OnlyOpen {
		query = query.Where("completed_at IS NULL")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&receipts).Error; err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// ListOpen 获取全部未结单小票（后厨看板）
func (r *GormReceiptRepository) ListOpen() ([]models.Receipt, error) {
	var receipts []models.Receipt
	if err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("receipt_items.id asc") }).
		Where("completed_at IS NULL").
		Where("status <> ?", constants.ReceiptStatusCompleted).
		Order("id asc").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// UpdateItemStatus 更新条目制作状态
func (r *GormReceiptRepository) UpdateItemStatus(itemID uint, status string) error {
	return r.db.Model(&models.ReceiptItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

// UpdateStatus 更新小票状态字段
func (r *GormReceiptRepository) UpdateStatus(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Receipt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateTotals 更新折扣总额与实收金额
func (r *GormReceiptRepository) UpdateTotals(id uint, discountTotal, totalAmount models.Money) error {
	return r.db.Model(&models.Receipt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"discount_total": discountTotal,
			"total_amount":   totalAmount,
		}).Error
}
