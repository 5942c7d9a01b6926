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
	"gorm.io/gorm"
)

func setupKitchenServiceTest(t *testing.T) (*KitchenService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:kitchen_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewKitchenService(receiptRepo, queue.NewClient(nil), 0), db
}

func createKitchenReceipt(t *testing.T, db *gorm.DB, itemStatuses ...string) *models.Receipt {
	t.Helper()
	items := make([]models.ReceiptItem, 0, len(itemStatuses))
	for i, status := range itemStatuses {
		items = append(items, models.ReceiptItem{
			MenuItemID: uint(i + 1),
			Name:       fmt.Sprintf("菜品%d", i+1),
			UnitPrice:  moneyFromString(t, "20.00"),
			Quantity:   1,
			TotalPrice: moneyFromString(t, "20.00"),
			Status:     status,
		})
	}
	receipt := &models.Receipt{
		ReceiptNo:     fmt.Sprintf("RNTEST%d", time.Now().UnixNano()),
		Status:        constants.ReceiptStatusPending,
		Subtotal:      moneyFromString(t, "20.00"),
		DiscountTotal: moneyFromString(t, "0"),
		TotalAmount:   moneyFromString(t, "20.00"),
		Items:         items,
	}
	if err := db.Create(receipt).Error; err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}
	return receipt
}

func TestUpdateItemStatusForward(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPending, constants.ItemStatusPending)

	result, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, constants.ItemStatusPreparing)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !result.Changed {
		t.Fatalf("expected change")
	}
	if result.Item.Status != constants.ItemStatusPreparing {
		t.Fatalf("item status want preparing got %s", result.Item.Status)
	}
	if result.ReceiptStatus != constants.ReceiptStatusPreparing {
		t.Fatalf("receipt status want preparing got %s", result.ReceiptStatus)
	}
}

func TestUpdateItemStatusSkipAhead(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPending)

	result, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, constants.ItemStatusDone)
	if err != nil {
		t.Fatalf("skip-ahead update failed: %v", err)
	}
	if result.Item.Status != constants.ItemStatusDone {
		t.Fatalf("item status want done got %s", result.Item.Status)
	}
	if result.ReceiptStatus != constants.ReceiptStatusDone {
		t.Fatalf("receipt status want done got %s", result.ReceiptStatus)
	}
}

func TestUpdateItemStatusBackwardRejected(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusReady)

	_, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, constants.ItemStatusPending)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// 失败的推进不得污染已持久化的状态
	var item models.ReceiptItem
	if err := db.First(&item, receipt.Items[0].ID).Error; err != nil {
		t.Fatalf("load item failed: %v", err)
	}
	if item.Status != constants.ItemStatusReady {
		t.Fatalf("item status should stay ready, got %s", item.Status)
	}
}

func TestUpdateItemStatusIdempotent(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPreparing)

	result, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, constants.ItemStatusPreparing)
	if err != nil {
		t.Fatalf("idempotent update should not error: %v", err)
	}
	if result.Changed {
		t.Fatalf("same-status update should be a no-op")
	}
	if result.Item.Status != constants.ItemStatusPreparing {
		t.Fatalf("item status want preparing got %s", result.Item.Status)
	}
}

func TestUpdateItemStatusUnknownStatus(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPending)

	_, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, "burnt")
	if !errors.Is(err, ErrInvalidItemStatus) {
		t.Fatalf("expected ErrInvalidItemStatus, got %v", err)
	}
}

func TestUpdateItemStatusCompletedReceipt(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPending)
	now := time.Now().UTC()
	if err := db.Model(&models.Receipt{}).Where("id = ?", receipt.ID).
		Updates(map[string]interface{}{"status": constants.ReceiptStatusCompleted, "completed_at": now}).Error; err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}

	_, err := svc.UpdateItemStatus(receipt.ID, receipt.Items[0].ID, constants.ItemStatusPreparing)
	if !errors.Is(err, ErrReceiptCompleted) {
		t.Fatalf("expected ErrReceiptCompleted, got %v", err)
	}
}

// gatedReceiptRepo 在首次写条目状态时停住，直到测试放行，
// 用来把一次推进固定在进行中。
type gatedReceiptRepo struct {
	inner   KitchenReceiptRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedReceiptRepo) GetByID(id uint) (*models.Receipt, error) {
	return g.inner.GetByID(id)
}

func (g *gatedReceiptRepo) GetItem(receiptID, itemID uint) (*models.ReceiptItem, error) {
	return g.inner.GetItem(receiptID, itemID)
}

func (g *gatedReceiptRepo) UpdateItemStatus(itemID uint, status string) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.inner.UpdateItemStatus(itemID, status)
}

func (g *gatedReceiptRepo) UpdateStatus(id uint, values map[string]interface{}) error {
	return g.inner.UpdateStatus(id, values)
}

func (g *gatedReceiptRepo) ListOpen() ([]models.Receipt, error) {
	return g.inner.ListOpen()
}

func TestUpdateItemStatusDuplicateInFlightDropped(t *testing.T) {
	_, db := setupKitchenServiceTest(t)
	gated := &gatedReceiptRepo{
		inner:   repository.NewReceiptRepository(db),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewKitchenService(gated, queue.NewClient(nil), 0)
	receipt := createKitchenReceipt(t, db, constants.ItemStatusPending)
	itemID := receipt.Items[0].ID

	type outcome struct {
		result *UpdateItemStatusResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.UpdateItemStatus(receipt.ID, itemID, constants.ItemStatusPreparing)
		done <- outcome{result: result, err: err}
	}()

	// 第一次推进已进入写库阶段且未完成，此时重复提交必须被静默丢弃
	<-gated.entered
	dup, err := svc.UpdateItemStatus(receipt.ID, itemID, constants.ItemStatusPreparing)
	if err != nil {
		t.Fatalf("duplicate submission should not error: %v", err)
	}
	if dup.Changed {
		t.Fatalf("duplicate submission must be dropped")
	}
	if dup.Item.Status != constants.ItemStatusPending {
		t.Fatalf("dropped submission should report current item status, got %s", dup.Item.Status)
	}
	if dup.ReceiptStatus != constants.ReceiptStatusPending {
		t.Fatalf("dropped submission should report current receipt status, got %q", dup.ReceiptStatus)
	}

	close(gated.release)
	first := <-done
	if first.err != nil {
		t.Fatalf("in-flight transition failed: %v", first.err)
	}
	if !first.result.Changed || first.result.Item.Status != constants.ItemStatusPreparing {
		t.Fatalf("in-flight transition should win: %+v", first.result)
	}
}

func TestRollupStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all_pending", []string{constants.ItemStatusPending, constants.ItemStatusPending}, constants.ReceiptStatusPending},
		{"one_started", []string{constants.ItemStatusPreparing, constants.ItemStatusPending}, constants.ReceiptStatusPreparing},
		{"ready_and_done", []string{constants.ItemStatusReady, constants.ItemStatusDone}, constants.ReceiptStatusReady},
		{"all_done", []string{constants.ItemStatusDone, constants.ItemStatusDone}, constants.ReceiptStatusDone},
		{"done_and_pending", []string{constants.ItemStatusDone, constants.ItemStatusPending}, constants.ReceiptStatusPreparing},
		{"empty", nil, constants.ReceiptStatusPending},
	}
	for _, tc := range cases {
		items := make([]models.ReceiptItem, 0, len(tc.statuses))
		for _, status := range tc.statuses {
			items = append(items, models.ReceiptItem{Status: status})
		}
		got := RollupStatus(&models.Receipt{Items: items})
		if got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}

	completedAt := time.Now()
	got := RollupStatus(&models.Receipt{
		CompletedAt: &completedAt,
		Items:       []models.ReceiptItem{{Status: constants.ItemStatusPending}},
	})
	if got != constants.ReceiptStatusCompleted {
		t.Fatalf("completed receipt: want completed got %s", got)
	}
}

func TestBoardListsOpenReceipts(t *testing.T) {
	svc, db := setupKitchenServiceTest(t)
	open := createKitchenReceipt(t, db, constants.ItemStatusPreparing)
	closed := createKitchenReceipt(t, db, constants.ItemStatusDone)
	now := time.Now().UTC()
	if err := db.Model(&models.Receipt{}).Where("id = ?", closed.ID).
		Updates(map[string]interface{}{"status": constants.ReceiptStatusCompleted, "completed_at": now}).Error; err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}

	entries, err := svc.Board()
	if err != nil {
		t.Fatalf("board failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("board entries want 1 got %d", len(entries))
	}
	if entries[0].ReceiptID != open.ID {
		t.Fatalf("board should list the open receipt, got %d", entries[0].ReceiptID)
	}
	if entries[0].Status != constants.ReceiptStatusPreparing {
		t.Fatalf("board status want preparing got %s", entries[0].Status)
	}
}
