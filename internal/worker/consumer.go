package worker

import (
	"context"
	"encoding/json"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/provider"
	"github.com/resto-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskKitchenStatusNotify, c.handleKitchenStatusNotify)
	mux.HandleFunc(constants.TaskReceiptCompletedNotify, c.handleReceiptCompletedNotify)
}

func (c *Consumer) handleKitchenStatusNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_kitchen_status_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.KitchenStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_kitchen_status_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.ReceiptID == 0 || payload.ItemID == 0 {
		logger.Debugw("worker_kitchen_status_notify_skip_invalid_payload",
			"receipt_id", payload.ReceiptID,
			"item_id", payload.ItemID,
		)
		return nil
	}
	receipt, err := c.ReceiptRepo.GetByID(payload.ReceiptID)
	if err != nil {
		logger.Warnw("worker_kitchen_status_notify_fetch_receipt_failed", "receipt_id", payload.ReceiptID, "error", err)
		return err
	}
	if receipt == nil {
		logger.Debugw("worker_kitchen_status_notify_skip_receipt_not_found", "receipt_id", payload.ReceiptID)
		return nil
	}
	// 通知出口目前只有结构化日志，前台轮询看板即可感知变化
	logger.Infow("kitchen_status_changed",
		"receipt_id", receipt.ID,
		"receipt_no", receipt.ReceiptNo,
		"table_no", receipt.TableNo,
		"item_id", payload.ItemID,
		"status", payload.Status,
	)
	return nil
}

func (c *Consumer) handleReceiptCompletedNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_completed_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReceiptCompletedNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_receipt_completed_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.ReceiptID == 0 {
		logger.Debugw("worker_receipt_completed_notify_skip_invalid_payload", "receipt_id", payload.ReceiptID)
		return nil
	}
	receipt, err := c.ReceiptRepo.GetByID(payload.ReceiptID)
	if err != nil {
		logger.Warnw("worker_receipt_completed_notify_fetch_receipt_failed", "receipt_id", payload.ReceiptID, "error", err)
		return err
	}
	if receipt == nil {
		logger.Debugw("worker_receipt_completed_notify_skip_receipt_not_found", "receipt_id", payload.ReceiptID)
		return nil
	}
	logger.Infow("receipt_completed",
		"receipt_id", receipt.ID,
		"receipt_no", receipt.ReceiptNo,
		"table_no", receipt.TableNo,
		"subtotal", receipt.Subtotal.String(),
		"discount_total", receipt.DiscountTotal.String(),
		"total_amount", receipt.TotalAmount.String(),
	)
	return nil
}
