package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/queue"
	"github.com/resto-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReceiptServiceTest(t *testing.T) (*ReceiptService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:receipt_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MenuItem{},
		&models.Receipt{},
		&models.ReceiptItem{},
		&models.Discount{},
		&models.AppliedDiscount{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	receiptRepo := repository.NewReceiptRepository(db)
	menuItemRepo := repository.NewMenuItemRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	appliedRepo := repository.NewAppliedDiscountRepository(db)
	discountService, err := NewDiscountService(discountRepo, "UTC", 20)
	if err != nil {
		t.Fatalf("new discount service failed: %v", err)
	}
	svc := NewReceiptService(db, receiptRepo, menuItemRepo, discountRepo, appliedRepo, discountService, queue.NewClient(nil))
	return svc, db
}

func createTestMenuItem(t *testing.T, db *gorm.DB, name, price string) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:     name,
		Price:    moneyFromString(t, price),
		IsActive: true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create menu item failed: %v", err)
	}
	return item
}

func createTestDiscount(t *testing.T, db *gorm.DB, discount *models.Discount) *models.Discount {
	t.Helper()
	if err := db.Create(discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	return discount
}

func TestCreateReceiptComputesSubtotal(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	noodle := createTestMenuItem(t, db, "牛肉面", "38.00")
	tea := createTestMenuItem(t, db, "柠檬茶", "15.00")

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		TableNo: "A3",
		Items: []CreateReceiptItem{
			{MenuItemID: noodle.ID, Quantity: 2},
			{MenuItemID: tea.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	if receipt.Subtotal.String() != "91.00" {
		t.Fatalf("subtotal want 91.00 got %s", receipt.Subtotal.String())
	}
	if receipt.TotalAmount.String() != "91.00" {
		t.Fatalf("total want 91.00 got %s", receipt.TotalAmount.String())
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(receipt.Items))
	}
	for _, item := range receipt.Items {
		if item.Status != constants.ItemStatusPending {
			t.Fatalf("item status want pending got %s", item.Status)
		}
	}
	if receipt.ReceiptNo == "" {
		t.Fatalf("receipt_no should not be empty")
	}
}

func TestCreateReceiptRejectsUnknownMenuItem(t *testing.T) {
	svc, _ := setupReceiptServiceTest(t)

	_, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: 999, Quantity: 1}},
	})
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got %v", err)
	}

	_, err = svc.CreateReceipt(CreateReceiptInput{})
	if !errors.Is(err, ErrInvalidReceiptItem) {
		t.Fatalf("empty items expected ErrInvalidReceiptItem, got %v", err)
	}
}

func TestApplyDiscountPercent(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "招牌菜", "50.00")
	createTestDiscount(t, db, &models.Discount{
		Code:     "SAVE10",
		Name:     "九折",
		Kind:     constants.DiscountKindPercent,
		Value:    moneyFromString(t, "10"),
		IsActive: true,
	})

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	result, err := svc.ApplyDiscount(receipt.ID, "SAVE10", time.Now())
	if err != nil {
		t.Fatalf("apply discount failed: %v", err)
	}
	if result.AppliedDiscount.AmountSaved.String() != "10.00" {
		t.Fatalf("saved want 10.00 got %s", result.AppliedDiscount.AmountSaved.String())
	}
	if result.NewTotal.String() != "90.00" {
		t.Fatalf("new total want 90.00 got %s", result.NewTotal.String())
	}

	var discount models.Discount
	if err := db.Where("code = ?", "SAVE10").First(&discount).Error; err != nil {
		t.Fatalf("load discount failed: %v", err)
	}
	if discount.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", discount.UsedCount)
	}
}

func TestApplyDiscountDuplicateRejected(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "招牌菜", "50.00")
	createTestDiscount(t, db, &models.Discount{
		Code:     "FIX5",
		Kind:     constants.DiscountKindFixed,
		Value:    moneyFromString(t, "5"),
		IsActive: true,
	})

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	if _, err := svc.ApplyDiscount(receipt.ID, "FIX5", time.Now()); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if _, err := svc.ApplyDiscount(receipt.ID, "FIX5", time.Now()); !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("second apply expected ErrDuplicateApplication, got %v", err)
	}

	// 失败的套用不产生流水，也不再占用额度
	var count int64
	db.Model(&models.AppliedDiscount{}).Where("receipt_id = ?", receipt.ID).Count(&count)
	if count != 1 {
		t.Fatalf("ledger entries want 1 got %d", count)
	}
	var discount models.Discount
	db.Where("code = ?", "FIX5").First(&discount)
	if discount.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", discount.UsedCount)
	}
}

func TestApplyDiscountUsageCapEnforced(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "招牌菜", "50.00")
	createTestDiscount(t, db, &models.Discount{
		Code:       "ONCE",
		Kind:       constants.DiscountKindFixed,
		Value:      moneyFromString(t, "5"),
		UsageLimit: 1,
		IsActive:   true,
	})

	first, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create first receipt failed: %v", err)
	}
	second, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create second receipt failed: %v", err)
	}

	if _, err := svc.ApplyDiscount(first.ID, "ONCE", time.Now()); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if _, err := svc.ApplyDiscount(second.ID, "ONCE", time.Now()); !errors.Is(err, ErrDiscountUsageLimit) {
		t.Fatalf("second apply expected ErrDiscountUsageLimit, got %v", err)
	}

	var discount models.Discount
	db.Where("code = ?", "ONCE").First(&discount)
	if discount.UsedCount != 1 {
		t.Fatalf("used_count must never exceed limit, want 1 got %d", discount.UsedCount)
	}
}

func TestApplyDiscountConcurrentCapNeverExceeded(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// 内存 sqlite 不支持并发写事务，收敛到单连接让事务在连接池排队
	sqlDB.SetMaxOpenConns(1)

	dish := createTestMenuItem(t, db, "招牌菜", "50.00")
	createTestDiscount(t, db, &models.Discount{
		Code:       "RUSH",
		Kind:       constants.DiscountKindFixed,
		Value:      moneyFromString(t, "5"),
		UsageLimit: 2,
		IsActive:   true,
	})

	const attempts = 5
	receipts := make([]*models.Receipt, attempts)
	for i := range receipts {
		receipt, err := svc.CreateReceipt(CreateReceiptInput{
			Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("create receipt %d failed: %v", i, err)
		}
		receipts[i] = receipt
	}

	var wg sync.WaitGroup
	applyErrs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, applyErrs[i] = svc.ApplyDiscount(receipts[i].ID, "RUSH", time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, applyErr := range applyErrs {
		switch {
		case applyErr == nil:
			succeeded++
		case errors.Is(applyErr, ErrDiscountUsageLimit), errors.Is(applyErr, ErrUsageRaceLost):
		default:
			t.Fatalf("unexpected apply error: %v", applyErr)
		}
	}
	if succeeded != 2 {
		t.Fatalf("successful applies want 2 got %d", succeeded)
	}

	var discount models.Discount
	db.Where("code = ?", "RUSH").First(&discount)
	if discount.UsedCount != 2 {
		t.Fatalf("used_count must never exceed limit, want 2 got %d", discount.UsedCount)
	}
	var count int64
	db.Model(&models.AppliedDiscount{}).Count(&count)
	if count != 2 {
		t.Fatalf("ledger entries want 2 got %d", count)
	}
}

func TestAppliedDiscountUniqueIndexViolationDetected(t *testing.T) {
	_, db := setupReceiptServiceTest(t)
	appliedRepo := repository.NewAppliedDiscountRepository(db)

	entry := models.AppliedDiscount{
		ReceiptID:          1,
		DiscountID:         2,
		DiscountName:       "满减",
		Kind:               constants.DiscountKindFixed,
		ValueAtApplication: moneyFromString(t, "5"),
		AmountSaved:        moneyFromString(t, "5"),
	}
	first := entry
	if err := appliedRepo.Create(&first); err != nil {
		t.Fatalf("first ledger insert failed: %v", err)
	}

	// 并发下两次套用可能同时通过存在性检查，落库时由唯一索引兜底；
	// ApplyDiscount 依赖该识别把冲突映射为重复套用而非存储故障
	second := entry
	err := appliedRepo.Create(&second)
	if err == nil {
		t.Fatalf("second ledger insert should hit idx_receipt_discount")
	}
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation classification, got %v", err)
	}
}

func TestApplyDiscountTotalsDerivedFromLedgerClampedAtZero(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "小菜", "30.00")
	createTestDiscount(t, db, &models.Discount{
		Code:     "BIG20",
		Kind:     constants.DiscountKindFixed,
		Value:    moneyFromString(t, "20"),
		IsActive: true,
	})
	createTestDiscount(t, db, &models.Discount{
		Code:     "MORE20",
		Kind:     constants.DiscountKindFixed,
		Value:    moneyFromString(t, "20"),
		IsActive: true,
	})

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	if _, err := svc.ApplyDiscount(receipt.ID, "BIG20", time.Now()); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	result, err := svc.ApplyDiscount(receipt.ID, "MORE20", time.Now())
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if !result.DiscountTotal.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("discount total want 40 got %s", result.DiscountTotal.String())
	}
	if !result.NewTotal.Decimal.Equal(decimal.Zero) {
		t.Fatalf("total must clamp at 0, got %s", result.NewTotal.String())
	}
}

func TestApplyDiscountOnCompletedReceipt(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "小菜", "30.00")
	createTestDiscount(t, db, &models.Discount{
		Code:     "FIX5",
		Kind:     constants.DiscountKindFixed,
		Value:    moneyFromString(t, "5"),
		IsActive: true,
	})

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	if _, err := svc.CompleteReceipt(receipt.ID); err != nil {
		t.Fatalf("complete receipt failed: %v", err)
	}

	if _, err := svc.ApplyDiscount(receipt.ID, "FIX5", time.Now()); !errors.Is(err, ErrReceiptCompleted) {
		t.Fatalf("expected ErrReceiptCompleted, got %v", err)
	}
}

func TestPreviewDiscountDoesNotMutate(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "招牌菜", "50.00")
	createTestDiscount(t, db, &models.Discount{
		Code:     "SAVE10",
		Kind:     constants.DiscountKindPercent,
		Value:    moneyFromString(t, "10"),
		IsActive: true,
	})

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	preview, err := svc.PreviewDiscount(receipt.ID, "SAVE10", time.Now())
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.AmountSaved.String() != "10.00" || preview.WouldTotal.String() != "90.00" {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	var discount models.Discount
	db.Where("code = ?", "SAVE10").First(&discount)
	if discount.UsedCount != 0 {
		t.Fatalf("preview must not consume usage, used_count got %d", discount.UsedCount)
	}
	var count int64
	db.Model(&models.AppliedDiscount{}).Where("receipt_id = ?", receipt.ID).Count(&count)
	if count != 0 {
		t.Fatalf("preview must not append ledger entries, got %d", count)
	}
}

func TestCompleteReceiptIdempotent(t *testing.T) {
	svc, db := setupReceiptServiceTest(t)
	dish := createTestMenuItem(t, db, "小菜", "30.00")

	receipt, err := svc.CreateReceipt(CreateReceiptInput{
		Items: []CreateReceiptItem{{MenuItemID: dish.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	completed, err := svc.CompleteReceipt(receipt.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.ReceiptStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed receipt: %+v", completed)
	}

	again, err := svc.CompleteReceipt(receipt.ID)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}
	if !again.IsCompleted() {
		t.Fatalf("second complete should keep completed state")
	}
}
