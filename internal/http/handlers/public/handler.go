package public

import (
	handlershared "github.com/resto-next/internal/http/handlers/shared"
	"github.com/resto-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 公开接口处理器入口
// 说明：该处理器仅用于展示类 API，不做任何变更操作。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
