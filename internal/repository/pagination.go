package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return query.Offset(offset).Limit(pageSize)
}
