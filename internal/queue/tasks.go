package queue

// KitchenStatusNotifyPayload 条目状态变更通知载荷
type KitchenStatusNotifyPayload struct {
	ReceiptID uint   `json:"receipt_id"`
	ItemID    uint   `json:"item_id"`
	Status    string `json:"status"`
}

// ReceiptCompletedNotifyPayload 结单通知载荷
type ReceiptCompletedNotifyPayload struct {
	ReceiptID uint `json:"receipt_id"`
}
