package provider

import (
	"github.com/resto-next/internal/cache"
	"github.com/resto-next/internal/config"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/queue"
	"github.com/resto-next/internal/repository"
	"github.com/resto-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	MenuItemRepo        repository.MenuItemRepository
	ReceiptRepo         repository.ReceiptRepository
	DiscountRepo        repository.DiscountRepository
	AppliedDiscountRepo repository.AppliedDiscountRepository

	// Services
	DiscountService *service.DiscountService
	ReceiptService  *service.ReceiptService
	KitchenService  *service.KitchenService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queue.NewClient(&cfg.Queue),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.MenuItemRepo = repository.NewMenuItemRepository(db)
	c.ReceiptRepo = repository.NewReceiptRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.AppliedDiscountRepo = repository.NewAppliedDiscountRepository(db)
}

func (c *Container) initServices() {
	discountService, err := service.NewDiscountService(
		c.DiscountRepo,
		c.Config.Discount.Timezone,
		c.Config.Discount.ComboRatePercent,
	)
	if err != nil {
		logger.Errorw("provider_init_discount_service_failed", "error", err)
		panic(err)
	}
	c.DiscountService = discountService
	c.ReceiptService = service.NewReceiptService(
		models.DB,
		c.ReceiptRepo,
		c.MenuItemRepo,
		c.DiscountRepo,
		c.AppliedDiscountRepo,
		c.DiscountService,
		c.QueueClient,
	)
	c.KitchenService = service.NewKitchenService(
		c.ReceiptRepo,
		c.QueueClient,
		c.Config.Kitchen.BoardCacheTTL(),
	)
}
