package worker

import (
	"context"
	"errors"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/queue"

	"github.com/hibiken/asynq"
)

// ErrQueueDisabled 未启用异步队列
var ErrQueueDisabled = errors.New("queue disabled")

// Service 订单通知邮件消费服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建消费服务并注册任务处理器
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "notification-worker"
}

// Start 阻塞消费直到 Stop
func (s *Service) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	logger.Infow("worker_consuming",
		"tasks", []string{queue.TaskOrderConfirmation, queue.TaskOrderStatusEmail},
	)
	return s.server.Run(s.mux)
}

// Stop 等待进行中的任务完成后退出
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
