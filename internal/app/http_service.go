package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// 收银 API 都是小请求，读头超时收紧即可，正文超时交给各 handler。
const httpReadHeaderTimeout = 10 * time.Second

// HTTPService 把 gin 引擎托管为 Runner 服务
type HTTPService struct {
	srv *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: httpReadHeaderTimeout,
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "api-http"
}

// Start 监听并阻塞；正常停机的 ErrServerClosed 不算失败
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return errors.New("http server not initialized")
	}
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 优雅停机，等待在途请求结束
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
