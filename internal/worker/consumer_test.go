package worker

import (
	"context"
	"testing"

	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/provider"

	"github.com/hibiken/asynq"
)

func TestHandleKitchenStatusNotifyBadPayload(t *testing.T) {
	c := NewConsumer(&provider.Container{})

	task := asynq.NewTask(constants.TaskKitchenStatusNotify, []byte("not-json"))
	if err := c.handleKitchenStatusNotify(context.Background(), task); err == nil {
		t.Fatalf("malformed payload should return error")
	}
}

func TestHandleKitchenStatusNotifySkipsZeroIDs(t *testing.T) {
	c := NewConsumer(&provider.Container{})

	// 缺少 ID 的任务直接丢弃，不进入重试
	task := asynq.NewTask(constants.TaskKitchenStatusNotify, []byte(`{"receipt_id":0,"item_id":0,"status":"ready"}`))
	if err := c.handleKitchenStatusNotify(context.Background(), task); err != nil {
		t.Fatalf("zero ids should be skipped without error, got %v", err)
	}
}

func TestHandleReceiptCompletedNotifySkipsZeroID(t *testing.T) {
	c := NewConsumer(&provider.Container{})

	task := asynq.NewTask(constants.TaskReceiptCompletedNotify, []byte(`{"receipt_id":0}`))
	if err := c.handleReceiptCompletedNotify(context.Background(), task); err != nil {
		t.Fatalf("zero id should be skipped without error, got %v", err)
	}
}
