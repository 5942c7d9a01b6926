package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 类型定义，用于存储结构化内容
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if text, isText := value.(string); isText {
			bytes = []byte(text)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, j)
}

// DiscountCondition 折扣附加条件（所有条件取逻辑与）
type DiscountCondition struct {
	Type        string `json:"type"`                   // min_amount / day_of_week
	Threshold   *Money `json:"threshold,omitempty"`    // min_amount 的金额门槛
	AllowedDays []int  `json:"allowed_days,omitempty"` // day_of_week 允许的星期（0=周日..6=周六）
}

// DiscountConditionList 折扣条件集合（JSON 列）
type DiscountConditionList []DiscountCondition

// Value 实现 driver.Valuer 接口
func (l DiscountConditionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *DiscountConditionList) Scan(value interface{}) error {
	if value == nil {
		*l = DiscountConditionList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if text, isText := value.(string); isText {
			bytes = []byte(text)
		} else {
			return nil
		}
	}
	if len(bytes) == 0 {
		*l = DiscountConditionList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// ComboItem 套餐折扣要求的餐品与最低数量
type ComboItem struct {
	MenuItemID  uint `json:"menu_item_id"`
	MinQuantity int  `json:"min_quantity"`
}

// ComboItemList 套餐折扣餐品要求集合（JSON 列）
type ComboItemList []ComboItem

// Value 实现 driver.Valuer 接口
func (l ComboItemList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner 接口
func (l *ComboItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ComboItemList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if text, isText := value.(string); isText {
			bytes = []byte(text)
		} else {
			return nil
		}
	}
	if len(bytes) == 0 {
		*l = ComboItemList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}
