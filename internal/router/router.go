package router

import (
	"fmt"
	"strings"

	"github.com/resto-next/internal/cache"
	"github.com/resto-next/internal/config"
	publichandlers "github.com/resto-next/internal/http/handlers/public"
	staffhandlers "github.com/resto-next/internal/http/handlers/staff"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/员工分组）
	publicHandler := publichandlers.New(c)
	staffHandler := staffhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rn"
	}
	applyRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:discount_apply", redisPrefix),
		WindowSeconds: cfg.Discount.ApplyRateLimit.WindowSeconds,
		MaxRequests:   cfg.Discount.ApplyRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/discounts", publicHandler.ListDiscounts)
			public.GET("/discounts/:code", publicHandler.GetDiscountByCode)
			public.GET("/kitchen/board", publicHandler.KitchenBoard)
		}

		// 员工接口
		staff := apiV1.Group("/staff")
		{
			staff.POST("/receipts", staffHandler.CreateReceipt)
			staff.GET("/receipts", staffHandler.ListReceipts)
			staff.GET("/receipts/:id", staffHandler.GetReceipt)
			staff.POST("/receipts/:id/discounts/preview", staffHandler.PreviewDiscount)
			staff.POST("/receipts/:id/discounts",
				RateLimitMiddleware(cache.Client(), applyRule, KeyByIP),
				staffHandler.ApplyDiscount)
			staff.POST("/receipts/:id/complete", staffHandler.CompleteReceipt)
			staff.PATCH("/receipts/:id/items/:item_id/status", staffHandler.UpdateItemStatus)
		}
	}

	return r
}
