package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/resto-next/internal/config"
	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/logger"

	"github.com/hibiken/asynq"
)

// Client 异步任务投递客户端。未启用队列时所有投递静默跳过。
type Client struct {
	inner *asynq.Client
}

// NewClient 创建投递客户端
func NewClient(cfg *config.QueueConfig) *Client {
	if cfg == nil || !cfg.Enabled {
		logger.Infow("queue_disabled")
		return &Client{}
	}
	inner := asynq.NewClient(buildRedisOpt(cfg))
	return &Client{inner: inner}
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{constants.QueueDefault: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

// Enabled 队列是否可用
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	task := asynq.NewTask(taskType, raw)
	info, err := c.inner.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	logger.Debugw("task_enqueued", "type", taskType, "task_id", info.ID, "queue", info.Queue)
	return nil
}

// EnqueueKitchenStatusNotify 投递条目状态变更通知
func (c *Client) EnqueueKitchenStatusNotify(payload KitchenStatusNotifyPayload) error {
	return c.enqueue(constants.TaskKitchenStatusNotify, payload,
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(3),
	)
}

// EnqueueReceiptCompletedNotify 投递结单通知
func (c *Client) EnqueueReceiptCompletedNotify(payload ReceiptCompletedNotifyPayload) error {
	return c.enqueue(constants.TaskReceiptCompletedNotify, payload,
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(3),
	)
}
