package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/queue"
	"github.com/resto-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptService 小票服务：开票、折扣套用与结单
type ReceiptService struct {
	db              *gorm.DB
	receiptRepo     repository.ReceiptRepository
	menuItemRepo    repository.MenuItemRepository
	discountRepo    repository.DiscountRepository
	appliedRepo     repository.AppliedDiscountRepository
	discountService *DiscountService
	queueClient     *queue.Client
}

// NewReceiptService 创建小票服务
func NewReceiptService(db *gorm.DB, receiptRepo repository.ReceiptRepository, menuItemRepo repository.MenuItemRepository, discountRepo repository.DiscountRepository, appliedRepo repository.AppliedDiscountRepository, discountService *DiscountService, queueClient *queue.Client) *ReceiptService {
	return &ReceiptService{
		db:              db,
		receiptRepo:     receiptRepo,
		menuItemRepo:    menuItemRepo,
		discountRepo:    discountRepo,
		appliedRepo:     appliedRepo,
		discountService: discountService,
		queueClient:     queueClient,
	}
}

// CreateReceiptItem 开票条目输入
type CreateReceiptItem struct {
	MenuItemID uint
	Quantity   int
}

// CreateReceiptInput 开票输入
type CreateReceiptInput struct {
	TableNo string
	Items   []CreateReceiptItem
}

// ApplyDiscountResult 折扣套用结果
type ApplyDiscountResult struct {
	AppliedDiscount *models.AppliedDiscount `json:"applied_discount"`
	DiscountTotal   models.Money            `json:"discount_total"`
	NewTotal        models.Money            `json:"new_total"`
}

// PreviewDiscountResult 折扣试算结果
type PreviewDiscountResult struct {
	DiscountID  uint         `json:"discount_id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	AmountSaved models.Money `json:"amount_saved"`
	WouldTotal  models.Money `json:"would_total"`
}

// CreateReceipt 开票。小计在此计算一次，之后作为快照使用，不再重算。
func (s *ReceiptService) CreateReceipt(input CreateReceiptInput) (*models.Receipt, error) {
	if len(input.Items) == 0 {
		return nil, ErrInvalidReceiptItem
	}

	ids := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if item.MenuItemID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidReceiptItem
		}
		ids = append(ids, item.MenuItemID)
	}

	menuItems, err := s.menuItemRepo.ListByIDs(ids)
	if err != nil {
		return nil, storeErr(err)
	}
	byID := make(map[uint]models.MenuItem, len(menuItems))
	for _, menuItem := range menuItems {
		byID[menuItem.ID] = menuItem
	}

	now := time.Now().UTC()
	subtotal := decimal.Zero
	items := make([]models.ReceiptItem, 0, len(input.Items))
	for _, item := range input.Items {
		menuItem, ok := byID[item.MenuItemID]
		if !ok || !menuItem.IsActive {
			return nil, ErrMenuItemNotFound
		}
		total := menuItem.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(total)
		items = append(items, models.ReceiptItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(total),
			Status:     constants.ItemStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	receipt := &models.Receipt{
		ReceiptNo:     generateReceiptNo(now),
		TableNo:       input.TableNo,
		Status:        constants.ReceiptStatusPending,
		Subtotal:      models.NewMoneyFromDecimal(subtotal),
		DiscountTotal: models.NewMoneyFromDecimal(decimal.Zero),
		TotalAmount:   models.NewMoneyFromDecimal(subtotal),
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         items,
	}
	if err := s.receiptRepo.Create(receipt); err != nil {
		return nil, storeErr(err)
	}
	return receipt, nil
}

// GetReceipt 获取小票
func (s *ReceiptService) GetReceipt(id uint) (*models.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	return receipt, nil
}

// ListReceipts 获取小票列表
func (s *ReceiptService) ListReceipts(filter repository.ReceiptListFilter) ([]models.Receipt, int64, error) {
	receipts, total, err := s.receiptRepo.List(filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return receipts, total, nil
}

// PreviewDiscount 折扣试算：只判定与计算，不落任何变更。
func (s *ReceiptService) PreviewDiscount(receiptID uint, code string, now time.Time) (*PreviewDiscountResult, error) {
	receipt, err := s.GetReceipt(receiptID)
	if err != nil {
		return nil, err
	}
	discount, err := s.discountService.Resolve(code)
	if err != nil {
		return nil, err
	}
	if err := s.discountService.Evaluate(discount, receipt, now); err != nil {
		return nil, err
	}
	saved, err := s.discountService.Calculate(discount, receipt)
	if err != nil {
		return nil, err
	}
	wouldTotal := receipt.Subtotal.Decimal.
		Sub(receipt.DiscountTotal.Decimal).
		Sub(saved.Decimal)
	if wouldTotal.LessThan(decimal.Zero) {
		wouldTotal = decimal.Zero
	}
	return &PreviewDiscountResult{
		DiscountID:  discount.ID,
		Name:        discount.Name,
		Kind:        discount.Kind,
		AmountSaved: saved,
		WouldTotal:  models.NewMoneyFromDecimal(wouldTotal),
	}, nil
}

// ApplyDiscount 判定并套用折扣。
// 判定、用量占用、流水追加与合计重算在同一事务内完成；
// 用量占用带上限前置条件，并发竞争失败返回 ErrUsageRaceLost。
func (s *ReceiptService) ApplyDiscount(receiptID uint, code string, now time.Time) (*ApplyDiscountResult, error) {
	var result *ApplyDiscountResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		receiptRepo := s.receiptRepo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)
		appliedRepo := s.appliedRepo.WithTx(tx)

		receipt, err := receiptRepo.GetByID(receiptID)
		if err != nil {
			return storeErr(err)
		}
		if receipt == nil {
			return ErrReceiptNotFound
		}
		if receipt.IsCompleted() {
			return ErrReceiptCompleted
		}

		discount, err := discountRepo.GetByCode(code)
		if err != nil {
			return storeErr(err)
		}
		if discount == nil {
			return ErrDiscountNotFound
		}

		if err := s.discountService.Evaluate(discount, receipt, now); err != nil {
			return err
		}

		saved, err := s.discountService.Calculate(discount, receipt)
		if err != nil {
			return err
		}

		exists, err := appliedRepo.ExistsForReceipt(receipt.ID, discount.ID)
		if err != nil {
			return storeErr(err)
		}
		if exists {
			return ErrDuplicateApplication
		}

		// 上限校验与计数自增在同一条 UPDATE 内完成；失败说明额度被并发占满
		consumed, err := discountRepo.ConsumeUsage(discount.ID)
		if err != nil {
			return storeErr(err)
		}
		if !consumed {
			return ErrUsageRaceLost
		}

		entry := &models.AppliedDiscount{
			ReceiptID:          receipt.ID,
			DiscountID:         discount.ID,
			DiscountName:       discount.Name,
			Kind:               discount.Kind,
			ValueAtApplication: discount.Value,
			AmountSaved:        saved,
			CreatedAt:          now.UTC(),
		}
		if err := appliedRepo.Create(entry); err != nil {
			// 唯一索引兜住并发下同时通过存在性检查的两次套用
			if isUniqueViolation(err) {
				return ErrDuplicateApplication
			}
			return storeErr(err)
		}

		// 合计永远从全量流水重算，避免增量调整产生漂移
		entries, err := appliedRepo.ListByReceiptID(receipt.ID)
		if err != nil {
			return storeErr(err)
		}
		discountTotal, totalAmount := recomputeTotals(receipt.Subtotal, entries)
		if err := receiptRepo.UpdateTotals(receipt.ID, discountTotal, totalAmount); err != nil {
			return storeErr(err)
		}

		result = &ApplyDiscountResult{
			AppliedDiscount: entry,
			DiscountTotal:   discountTotal,
			NewTotal:        totalAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteReceipt 结单。与条目状态正交：允许在任意条目状态下结单。
func (s *ReceiptService) CompleteReceipt(receiptID uint) (*models.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(receiptID)
	if err != nil {
		return nil, storeErr(err)
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	if receipt.IsCompleted() {
		return receipt, nil
	}

	now := time.Now().UTC()
	if err := s.receiptRepo.UpdateStatus(receipt.ID, map[string]interface{}{
		"status":       constants.ReceiptStatusCompleted,
		"completed_at": now,
		"updated_at":   now,
	}); err != nil {
		return nil, storeErr(err)
	}
	receipt.Status = constants.ReceiptStatusCompleted
	receipt.CompletedAt = &now

	// 结单已提交，通知失败只记录，不回滚
	if err := s.queueClient.EnqueueReceiptCompletedNotify(queue.ReceiptCompletedNotifyPayload{
		ReceiptID: receipt.ID,
	}); err != nil {
		logger.Warnw("receipt_completed_notify_enqueue_failed",
			"receipt_id", receipt.ID,
			"error", err,
		)
	}

	return receipt, nil
}

// recomputeTotals 依据全量流水折算合计：total = max(0, subtotal - Σ saved)
func recomputeTotals(subtotal models.Money, entries []models.AppliedDiscount) (models.Money, models.Money) {
	discountTotal := decimal.Zero
	for _, entry := range entries {
		discountTotal = discountTotal.Add(entry.AmountSaved.Decimal)
	}
	totalAmount := subtotal.Decimal.Sub(discountTotal)
	if totalAmount.LessThan(decimal.Zero) {
		totalAmount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discountTotal), models.NewMoneyFromDecimal(totalAmount)
}

func generateReceiptNo(now time.Time) string {
	suffix, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		suffix = big.NewInt(now.UnixNano() % 1000000)
	}
	return fmt.Sprintf("RN%s%06d", now.Format("20060102150405"), suffix.Int64())
}
