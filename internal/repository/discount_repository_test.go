package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDiscountRepositoryTest(t *testing.T) (*GormDiscountRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:discount_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Discount{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewDiscountRepository(db), db
}

func TestDiscountRepositoryGetByCodeCaseInsensitive(t *testing.T) {
	repo, db := setupDiscountRepositoryTest(t)

	discount := models.Discount{
		Code:     "SAVE10",
		Name:     "满减",
		Kind:     constants.DiscountKindPercent,
		Value:    models.NewMoneyFromDecimal(decimal.RequireFromString("10")),
		IsActive: true,
	}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	got, err := repo.GetByCode("save10")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if got == nil || got.ID != discount.ID {
		t.Fatalf("lowercase lookup should match SAVE10")
	}

	missing, err := repo.GetByCode("NOPE")
	if err != nil {
		t.Fatalf("get missing code failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing code should return nil, got %+v", missing)
	}
}

func TestDiscountRepositoryConsumeUsage(t *testing.T) {
	repo, db := setupDiscountRepositoryTest(t)

	limited := models.Discount{
		Code:       "LIMITED",
		Name:       "限量",
		Kind:       constants.DiscountKindFixed,
		Value:      models.NewMoneyFromDecimal(decimal.RequireFromString("5")),
		UsageLimit: 2,
		IsActive:   true,
	}
	if err := db.Create(&limited).Error; err != nil {
		t.Fatalf("create limited discount failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := repo.ConsumeUsage(limited.ID)
		if err != nil {
			t.Fatalf("consume %d failed: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("consume %d should succeed within limit", i+1)
		}
	}

	ok, err := repo.ConsumeUsage(limited.ID)
	if err != nil {
		t.Fatalf("consume at cap failed: %v", err)
	}
	if ok {
		t.Fatalf("consume beyond limit should fail")
	}

	var reloaded models.Discount
	if err := db.First(&reloaded, limited.ID).Error; err != nil {
		t.Fatalf("reload discount failed: %v", err)
	}
	if reloaded.UsedCount != 2 {
		t.Fatalf("used_count want 2 got %d", reloaded.UsedCount)
	}
}

func TestDiscountRepositoryConsumeUsageUnlimited(t *testing.T) {
	repo, db := setupDiscountRepositoryTest(t)

	unlimited := models.Discount{
		Code:     "FOREVER",
		Name:     "不限量",
		Kind:     constants.DiscountKindFixed,
		Value:    models.NewMoneyFromDecimal(decimal.RequireFromString("5")),
		IsActive: true,
	}
	if err := db.Create(&unlimited).Error; err != nil {
		t.Fatalf("create unlimited discount failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		ok, err := repo.ConsumeUsage(unlimited.ID)
		if err != nil {
			t.Fatalf("consume %d failed: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("usage_limit=0 should never block, attempt %d", i+1)
		}
	}
}
