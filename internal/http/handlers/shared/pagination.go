package shared

// 分页上限按门店体量取：一家店同时在场的小票和折扣都远小于 100。
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePagination 把请求里的分页参数收敛到合法区间
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}
