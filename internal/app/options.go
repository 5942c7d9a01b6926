package app

import (
	"os"
	"time"

	"github.com/resto-next/internal/config"
	"github.com/resto-next/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同进程跑 API 与任务消费者，api / worker 各跑一种。
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 启动选项。未填的字段按配置与默认值补齐。
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration // 为零时取 server.shutdown_timeout_seconds
	Mode            string
}

func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 && opts.Config != nil {
		opts.ShutdownTimeout = opts.Config.Server.ShutdownTimeout()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
