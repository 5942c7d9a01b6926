package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可受运行器托管的长驻服务（API、后厨任务消费者）。
// Start 阻塞直到服务退出或 ctx 取消，Stop 负责优雅收尾。
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 托管一组长驻服务：任一服务退出即触发整体停机，
// 停机时按注册的逆序逐个 Stop。
type Runner struct {
	services    []Service
	stopTimeout time.Duration
}

// NewRunner 创建运行器。stopTimeout 为停机时每轮 Stop 的总预算。
func NewRunner(stopTimeout time.Duration, services ...Service) *Runner {
	if stopTimeout <= 0 {
		stopTimeout = 15 * time.Second
	}
	return &Runner{services: services, stopTimeout: stopTimeout}
}

// RunWithOptions 挂接系统信号后运行。信号触发 ctx 取消，走同一条停机路径。
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	if opts.ShutdownTimeout > 0 {
		runner.stopTimeout = opts.ShutdownTimeout
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.Logger)
}

// Run 启动全部服务并等待第一个退出原因（服务报错或 ctx 取消），
// 然后统一停机。信号触发的取消视为正常退出。
func (r *Runner) Run(ctx context.Context, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exitCh := make(chan error, len(r.services))
	for _, svc := range r.services {
		go r.launch(runCtx, svc, log, exitCh)
	}

	var cause error
	select {
	case <-runCtx.Done():
		cause = runCtx.Err()
	case err := <-exitCh:
		cause = err
	}
	cancel()

	r.stopAll(log)

	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

func (r *Runner) launch(ctx context.Context, svc Service, log *zap.SugaredLogger, exitCh chan<- error) {
	if svc == nil {
		exitCh <- errors.New("service is nil")
		return
	}
	if log != nil {
		log.Infow("service_started", "service", svc.Name())
	}
	exitCh <- svc.Start(ctx)
	if log != nil {
		log.Infow("service_exited", "service", svc.Name())
	}
}

// stopAll 逆序停机：worker 先于 HTTP 注册，因此 HTTP 先停止收新请求，
// 消费者随后排空在手任务。
func (r *Runner) stopAll(log *zap.SugaredLogger) {
	stopCtx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()

	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil && log != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
