package staff

import "github.com/resto-next/internal/provider"

// Handler 员工侧接口处理器入口
// 说明：该处理器用于收银与后厨操作 API。
type Handler struct {
	*provider.Container
}

// New 创建员工侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
