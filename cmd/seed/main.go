package main

import (
	"time"

	"github.com/resto-next/internal/config"
	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加菜品
	menuItems := []models.MenuItem{
		{Name: "招牌牛肉面", Price: mustMoney("38.00"), IsActive: true},
		{Name: "红油抄手", Price: mustMoney("22.00"), IsActive: true},
		{Name: "口水鸡", Price: mustMoney("32.00"), IsActive: true},
		{Name: "宫保鸡丁", Price: mustMoney("42.00"), IsActive: true},
		{Name: "麻婆豆腐", Price: mustMoney("26.00"), IsActive: true},
		{Name: "米饭", Price: mustMoney("3.00"), IsActive: true},
		{Name: "酸梅汤", Price: mustMoney("12.00"), IsActive: true},
		{Name: "冰镇柠檬茶", Price: mustMoney("15.00"), IsActive: true},
	}
	for _, item := range menuItems {
		var existing models.MenuItem
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create menu item %s: %v", item.Name, err)
			} else {
				stdLog.Printf("Created menu item: %s", item.Name)
			}
		} else {
			stdLog.Printf("Menu item already exists: %s", item.Name)
		}
	}

	menuItemIDs := map[string]uint{}
	var menuItemList []models.MenuItem
	if err := models.DB.Find(&menuItemList).Error; err != nil {
		stdLog.Fatalf("Failed to load menu items: %v", err)
	}
	for _, item := range menuItemList {
		menuItemIDs[item.Name] = item.ID
	}

	// 添加折扣
	now := time.Now().UTC()
	weekLater := now.AddDate(0, 0, 7)
	monthLater := now.AddDate(0, 1, 0)
	minAmount := mustMoney("100.00")
	discounts := []models.Discount{
		{
			Code:       "SAVE10",
			Name:       "满百九折",
			Kind:       constants.DiscountKindPercent,
			Value:      mustMoney("10.00"),
			UsageLimit: 0,
			IsActive:   true,
			StartsAt:   &now,
			EndsAt:     &monthLater,
			Conditions: models.DiscountConditionList{
				{Type: constants.ConditionTypeMinAmount, Threshold: &minAmount},
			},
		},
		{
			Code:       "WEEKDAY5",
			Name:       "工作日立减5元",
			Kind:       constants.DiscountKindFixed,
			Value:      mustMoney("5.00"),
			UsageLimit: 200,
			IsActive:   true,
			StartsAt:   &now,
			EndsAt:     &weekLater,
			Conditions: models.DiscountConditionList{
				{Type: constants.ConditionTypeDayOfWeek, AllowedDays: []int{1, 2, 3, 4, 5}},
			},
		},
		{
			Code:       "NOODLECOMBO",
			Name:       "牛肉面套餐优惠",
			Kind:       constants.DiscountKindCombo,
			Value:      mustMoney("0.00"),
			UsageLimit: 50,
			IsActive:   true,
			StartsAt:   &now,
			EndsAt:     &monthLater,
			ComboItems: models.ComboItemList{
				{MenuItemID: menuItemIDs["招牌牛肉面"], MinQuantity: 1},
				{MenuItemID: menuItemIDs["酸梅汤"], MinQuantity: 1},
			},
		},
	}
	for _, discount := range discounts {
		var existing models.Discount
		if err := models.DB.Where("code = ?", discount.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&discount).Error; err != nil {
				stdLog.Printf("Failed to create discount %s: %v", discount.Code, err)
			} else {
				stdLog.Printf("Created discount: %s", discount.Code)
			}
		} else {
			stdLog.Printf("Discount already exists: %s", discount.Code)
		}
	}

	// 添加示例小票
	var receiptCount int64
	models.DB.Model(&models.Receipt{}).Count(&receiptCount)
	if receiptCount == 0 {
		beefNoodle := menuItemList[0]
		subtotal := beefNoodle.Price.Decimal.Mul(decimal.NewFromInt(2))
		receipt := models.Receipt{
			ReceiptNo:     "RN" + now.Format("20060102150405") + "000001",
			TableNo:       "A1",
			Status:        constants.ReceiptStatusPending,
			Subtotal:      models.NewMoneyFromDecimal(subtotal),
			DiscountTotal: models.NewMoneyFromDecimal(decimal.Zero),
			TotalAmount:   models.NewMoneyFromDecimal(subtotal),
			Items: []models.ReceiptItem{
				{
					MenuItemID: beefNoodle.ID,
					Name:       beefNoodle.Name,
					UnitPrice:  beefNoodle.Price,
					Quantity:   2,
					TotalPrice: models.NewMoneyFromDecimal(subtotal),
					Status:     constants.ItemStatusPending,
				},
			},
		}
		if err := models.DB.Create(&receipt).Error; err != nil {
			stdLog.Printf("Failed to create sample receipt: %v", err)
		} else {
			stdLog.Printf("Created sample receipt: %s", receipt.ReceiptNo)
		}
	}

	stdLog.Printf("Seed finished")
}

func mustMoney(value string) models.Money {
	money, err := models.NewMoneyFromString(value)
	if err != nil {
		panic(err)
	}
	return money
}
