package constants

// 小票（订单）状态常量
const (
	ReceiptStatusPending   = "pending"
	ReceiptStatusPreparing = "preparing"
	ReceiptStatusReady     = "ready"
	ReceiptStatusDone      = "done"
	ReceiptStatusCompleted = "completed"
)

// 餐品条目制作状态常量
const (
	ItemStatusPending   = "pending"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusDone      = "done"
)

// 折扣类型常量
const (
	DiscountKindFixed   = "fixed"
	DiscountKindPercent = "percent"
	DiscountKindCombo   = "combo"
)

// 折扣条件类型常量
const (
	ConditionTypeMinAmount = "min_amount"
	ConditionTypeDayOfWeek = "day_of_week"
)

// 折扣有效期标识常量
const (
	DiscountWindowUpcoming = "upcoming"
	DiscountWindowActive   = "active"
	DiscountWindowExpired  = "expired"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务名称常量
const (
	TaskKitchenStatusNotify    = "kitchen:status_notify"
	TaskReceiptCompletedNotify = "receipt:completed_notify"
)
