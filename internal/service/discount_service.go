package service

import (
	"strings"
	"time"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/repository"

	"github.com/shopspring/decimal"
)

// DiscountService 折扣服务：资格判定与金额计算。
// Evaluate/Calculate 均为纯函数（不产生副作用），流水写入由 ReceiptService 负责。
type DiscountService struct {
	discountRepo repository.DiscountRepository
	location     *time.Location
	comboRate    decimal.Decimal
}

// NewDiscountService 创建折扣服务。
// timezone 决定星期条件按哪个时区取工作日；comboRatePercent 为套餐减免比例。
func NewDiscountService(discountRepo repository.DiscountRepository, timezone string, comboRatePercent float64) (*DiscountService, error) {
	trimmed := strings.TrimSpace(timezone)
	if trimmed == "" {
		trimmed = "UTC"
	}
	location, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, err
	}
	rate := decimal.NewFromFloat(comboRatePercent)
	if rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(100)) {
		rate = decimal.NewFromInt(20)
	}
	return &DiscountService{
		discountRepo: discountRepo,
		location:     location,
		comboRate:    rate,
	}, nil
}

// Resolve 根据折扣码查找折扣（不区分大小写）
func (s *DiscountService) Resolve(code string) (*models.Discount, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrDiscountNotFound
	}
	discount, err := s.discountRepo.GetByCode(trimmed)
	if err != nil {
		return nil, storeErr(err)
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

// Evaluate 判定折扣对小票是否可用。
// 检查顺序固定（先廉价后昂贵），首个不满足的检查即为拒绝原因；返回 nil 表示可用。
func (s *DiscountService) Evaluate(discount *models.Discount, receipt *models.Receipt, now time.Time) error {
	if discount == nil {
		return ErrDiscountNotFound
	}
	if receipt == nil {
		return ErrReceiptNotFound
	}

	if !discount.IsActive {
		return ErrDiscountInactive
	}

	// 有效期为闭区间 [StartsAt, EndsAt]
	if discount.StartsAt != nil && now.Before(*discount.StartsAt) {
		return ErrDiscountNotStarted
	}
	if discount.EndsAt != nil && now.After(*discount.EndsAt) {
		return ErrDiscountExpired
	}

	if discount.UsageLimit > 0 && discount.UsedCount >= discount.UsageLimit {
		return ErrDiscountUsageLimit
	}

	for _, condition := range discount.Conditions {
		if !s.conditionHolds(condition, receipt, now) {
			return ErrDiscountConditions
		}
	}

	if normalizeKind(discount.Kind) == constants.DiscountKindCombo {
		if len(discount.ComboItems) == 0 {
			return ErrDiscountInvalid
		}
		quantities := receiptQuantities(receipt.Items)
		for _, combo := range discount.ComboItems {
			if quantities[combo.MenuItemID] < combo.MinQuantity {
				return ErrDiscountComboMissing
			}
		}
	}

	return nil
}

// Calculate 计算可用折扣的节省金额，结果始终落在 [0, subtotal] 内。
func (s *DiscountService) Calculate(discount *models.Discount, receipt *models.Receipt) (models.Money, error) {
	if discount == nil {
		return models.Money{}, ErrDiscountNotFound
	}
	if receipt == nil {
		return models.Money{}, ErrReceiptNotFound
	}
	subtotal := receipt.Subtotal.Decimal

	var saved decimal.Decimal
	switch normalizeKind(discount.Kind) {
	case constants.DiscountKindFixed:
		if discount.Value.Decimal.LessThan(decimal.Zero) {
			return models.Money{}, ErrDiscountInvalid
		}
		saved = discount.Value.Decimal
	case constants.DiscountKindPercent:
		if discount.Value.Decimal.LessThan(decimal.Zero) ||
			discount.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return models.Money{}, ErrDiscountInvalid
		}
		percent := discount.Value.Decimal.Div(decimal.NewFromInt(100))
		saved = subtotal.Mul(percent)
	case constants.DiscountKindCombo:
		if len(discount.ComboItems) == 0 {
			return models.Money{}, ErrDiscountInvalid
		}
		saved = s.comboSaving(discount.ComboItems, receipt.Items)
	default:
		return models.Money{}, ErrDiscountInvalid
	}

	if saved.LessThan(decimal.Zero) {
		saved = decimal.Zero
	}
	if saved.GreaterThan(subtotal) {
		saved = subtotal
	}
	return models.NewMoneyFromDecimal(saved), nil
}

// WindowState 返回折扣相对有效期的状态（upcoming/active/expired）
func (s *DiscountService) WindowState(discount *models.Discount, now time.Time) string {
	if discount == nil {
		return ""
	}
	if discount.StartsAt != nil && now.Before(*discount.StartsAt) {
		return constants.DiscountWindowUpcoming
	}
	if discount.EndsAt != nil && now.After(*discount.EndsAt) {
		return constants.DiscountWindowExpired
	}
	return constants.DiscountWindowActive
}

// List 获取折扣列表
func (s *DiscountService) List(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	discounts, total, err := s.discountRepo.List(filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return discounts, total, nil
}

func (s *DiscountService) conditionHolds(condition models.DiscountCondition, receipt *models.Receipt, now time.Time) bool {
	switch strings.ToLower(strings.TrimSpace(condition.Type)) {
	case constants.ConditionTypeMinAmount:
		if condition.Threshold == nil {
			return true
		}
		return receipt.Subtotal.Decimal.GreaterThanOrEqual(condition.Threshold.Decimal)
	case constants.ConditionTypeDayOfWeek:
		if len(condition.AllowedDays) == 0 {
			return false
		}
		weekday := int(now.In(s.location).Weekday())
		for _, day := range condition.AllowedDays {
			if day == weekday {
				return true
			}
		}
		return false
	default:
		// 未知条件类型一律视为不满足，避免放宽校验
		return false
	}
}

// comboSaving 对每个命中的套餐要求，按最低数量 × 单价 × 套餐比例减免；
// 超出最低数量的部分按原价计。
func (s *DiscountService) comboSaving(comboItems models.ComboItemList, items []models.ReceiptItem) decimal.Decimal {
	unitPrices := make(map[uint]decimal.Decimal, len(items))
	for _, item := range items {
		if _, ok := unitPrices[item.MenuItemID]; !ok {
			unitPrices[item.MenuItemID] = item.UnitPrice.Decimal
		}
	}

	rate := s.comboRate.Div(decimal.NewFromInt(100))
	saved := decimal.Zero
	for _, combo := range comboItems {
		price, ok := unitPrices[combo.MenuItemID]
		if !ok || combo.MinQuantity <= 0 {
			continue
		}
		part := price.Mul(decimal.NewFromInt(int64(combo.MinQuantity))).Mul(rate)
		saved = saved.Add(part)
	}
	return saved
}

// normalizeKind 折扣类型统一归一（Evaluate 与 Calculate 必须走同一套归一）
func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func receiptQuantities(items []models.ReceiptItem) map[uint]int {
	quantities := make(map[uint]int, len(items))
	for _, item := range items {
		quantities[item.MenuItemID] += item.Quantity
	}
	return quantities
}
