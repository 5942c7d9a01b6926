package shared

import (
	"strconv"

	"github.com/resto-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ParseUintParam 从路径参数读取正整数 ID，失败时统一返回参数错误响应。
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

// QueryInt 读取整数查询参数，缺省或非法时返回 fallback。
func QueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
