package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/resto-next/internal/cache"
	"github.com/resto-next/internal/constants"
	"github.com/resto-next/internal/logger"
	"github.com/resto-next/internal/models"
	"github.com/resto-next/internal/queue"
)

// statusRank 条目状态推进顺序。只允许向前，允许跳级。
var statusRank = map[string]int{
	constants.ItemStatusPending:   0,
	constants.ItemStatusPreparing: 1,
	constants.ItemStatusReady:     2,
	constants.ItemStatusDone:      3,
}

const boardCacheKey = "kitchen:board"

// KitchenService 后厨服务：条目状态推进与看板
type KitchenService struct {
	receiptRepo KitchenReceiptRepository
	queueClient *queue.Client
	boardTTL    time.Duration

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

// KitchenReceiptRepository 后厨侧需要的小票仓储能力
type KitchenReceiptRepository interface {
	GetByID(id uint) (*models.Receipt, error)
	GetItem(receiptID, itemID uint) (*models.ReceiptItem, error)
	UpdateItemStatus(itemID uint, status string) error
	UpdateStatus(id uint, values map[string]interface{}) error
	ListOpen() ([]models.Receipt, error)
}

// NewKitchenService 创建后厨服务
func NewKitchenService(receiptRepo KitchenReceiptRepository, queueClient *queue.Client, boardTTL time.Duration) *KitchenService {
	return &KitchenService{
		receiptRepo: receiptRepo,
		queueClient: queueClient,
		boardTTL:    boardTTL,
		inFlight:    make(map[uint]struct{}),
	}
}

// UpdateItemStatusResult 条目状态推进结果
type UpdateItemStatusResult struct {
	Item          *models.ReceiptItem `json:"item"`
	ReceiptStatus string              `json:"receipt_status"`
	Changed       bool                `json:"changed"`
}

// UpdateItemStatus 推进条目状态并折算整单状态。
// 同一条目正在处理时，后到的请求直接按当前状态返回，不报错。
func (s *KitchenService) UpdateItemStatus(receiptID, itemID uint, target string) (*UpdateItemStatusResult, error) {
	targetRank, ok := statusRank[target]
	if !ok {
		return nil, ErrInvalidItemStatus
	}

	s.mu.Lock()
	if _, busy := s.inFlight[itemID]; busy {
		s.mu.Unlock()
		receipt, err := s.receiptRepo.GetByID(receiptID)
		if err != nil {
			return nil, storeErr(err)
		}
		if receipt == nil {
			return nil, ErrReceiptNotFound
		}
		item, err := s.receiptRepo.GetItem(receiptID, itemID)
		if err != nil {
			return nil, storeErr(err)
		}
		if item == nil {
			return nil, ErrReceiptItemNotFound
		}
		return &UpdateItemStatusResult{Item: item, ReceiptStatus: receipt.Status, Changed: false}, nil
	}
	s.inFlight[itemID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, itemID)
		s.mu.Unlock()
	}()

	receipt, err := s.receiptRepo.GetByID(receiptID)
	if err != nil {
		return nil, storeErr(err)
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}
	if receipt.IsCompleted() {
		return nil, ErrReceiptCompleted
	}

	item, err := s.receiptRepo.GetItem(receiptID, itemID)
	if err != nil {
		return nil, storeErr(err)
	}
	if item == nil {
		return nil, ErrReceiptItemNotFound
	}

	currentRank, ok := statusRank[item.Status]
	if !ok {
		return nil, ErrInvalidItemStatus
	}
	if targetRank == currentRank {
		// 重复提交按幂等处理
		return &UpdateItemStatusResult{Item: item, ReceiptStatus: receipt.Status, Changed: false}, nil
	}
	if targetRank < currentRank {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, target)
	}

	if err := s.receiptRepo.UpdateItemStatus(item.ID, target); err != nil {
		return nil, storeErr(err)
	}
	item.Status = target

	for i := range receipt.Items {
		if receipt.Items[i].ID == item.ID {
			receipt.Items[i].Status = target
		}
	}
	rollup := RollupStatus(receipt)
	if rollup != receipt.Status {
		if err := s.receiptRepo.UpdateStatus(receipt.ID, map[string]interface{}{
			"status":     rollup,
			"updated_at": time.Now().UTC(),
		}); err != nil {
			return nil, storeErr(err)
		}
		receipt.Status = rollup
	}

	s.invalidateBoard()

	// 状态已落库，通知失败只记录，不影响本次推进
	if err := s.queueClient.EnqueueKitchenStatusNotify(queue.KitchenStatusNotifyPayload{
		ReceiptID: receipt.ID,
		ItemID:    item.ID,
		Status:    target,
	}); err != nil {
		logger.Warnw("kitchen_status_notify_enqueue_failed",
			"receipt_id", receipt.ID,
			"item_id", item.ID,
			"error", err,
		)
	}

	return &UpdateItemStatusResult{Item: item, ReceiptStatus: rollup, Changed: true}, nil
}

// RollupStatus 由条目状态折算整单状态，纯函数。
// 已结单直接返回 completed；全部 done 为 done；
// 全部 ready/done 且至少一个 ready 为 ready；
// 任一条目到达 preparing 及以上为 preparing；否则 pending。
func RollupStatus(receipt *models.Receipt) string {
	if receipt.IsCompleted() {
		return constants.ReceiptStatusCompleted
	}
	if len(receipt.Items) == 0 {
		return constants.ReceiptStatusPending
	}

	allDone := true
	allReadyOrDone := true
	anyReady := false
	anyStarted := false
	for _, item := range receipt.Items {
		rank := statusRank[item.Status]
		if rank < statusRank[constants.ItemStatusDone] {
			allDone = false
		}
		if rank < statusRank[constants.ItemStatusReady] {
			allReadyOrDone = false
		}
		if item.Status == constants.ItemStatusReady {
			anyReady = true
		}
		if rank >= statusRank[constants.ItemStatusPreparing] {
			anyStarted = true
		}
	}

	switch {
	case allDone:
		return constants.ReceiptStatusDone
	case allReadyOrDone && anyReady:
		return constants.ReceiptStatusReady
	case anyStarted:
		return constants.ReceiptStatusPreparing
	default:
		return constants.ReceiptStatusPending
	}
}

// BoardEntry 看板条目
type BoardEntry struct {
	ReceiptID uint                 `json:"receipt_id"`
	ReceiptNo string               `json:"receipt_no"`
	TableNo   string               `json:"table_no"`
	Status    string               `json:"status"`
	Items     []models.ReceiptItem `json:"items"`
}

// Board 后厨看板：全部未结单小票及其条目状态，短缓存
func (s *KitchenService) Board() ([]BoardEntry, error) {
	if cache.Enabled() {
		var cached []BoardEntry
		if ok, err := cache.GetJSON(boardCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	receipts, err := s.receiptRepo.ListOpen()
	if err != nil {
		return nil, storeErr(err)
	}
	entries := make([]BoardEntry, 0, len(receipts))
	for i := range receipts {
		entries = append(entries, BoardEntry{
			ReceiptID: receipts[i].ID,
			ReceiptNo: receipts[i].ReceiptNo,
			TableNo:   receipts[i].TableNo,
			Status:    RollupStatus(&receipts[i]),
			Items:     receipts[i].Items,
		})
	}

	if cache.Enabled() && s.boardTTL > 0 {
		if err := cache.SetJSON(boardCacheKey, entries, s.boardTTL); err != nil {
			logger.Debugw("kitchen_board_cache_set_failed", "error", err)
		}
	}
	return entries, nil
}

func (s *KitchenService) invalidateBoard() {
	if !cache.Enabled() {
		return
	}
	if err := cache.Del(boardCacheKey); err != nil {
		logger.Debugw("kitchen_board_cache_del_failed", "error", err)
	}
}
