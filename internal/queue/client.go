package queue

import (
	"fmt"
	"strings"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列
	DefaultQueue = constants.QueueDefault
	// DefaultMaxRetry 默认最大重试次数
	DefaultMaxRetry = 5

	defaultConcurrency = 10
)

// Client 投递任务的 asynq 客户端；未启用时所有投递为空操作
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{maxRetry: resolveMaxRetry(cfg)}
	if cfg != nil && cfg.Enabled {
		c.client = asynq.NewClient(buildRedisOpt(cfg))
	}
	return c, nil
}

// Enabled 是否实际投递
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderConfirmation 投递下单确认邮件
func (c *Client) EnqueueOrderConfirmation(orderID uint, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderConfirmationTask(OrderConfirmationPayload{OrderID: orderID})
	if err != nil {
		return err
	}
	return c.enqueue(task, opts)
}

// EnqueueOrderStatusEmail 投递订单状态邮件
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, opts)
}

func (c *Client) enqueue(task *asynq.Task, opts []asynq.Option) error {
	base := []asynq.Option{asynq.Queue(DefaultQueue), asynq.MaxRetry(c.maxRetry)}
	if _, err := c.client.Enqueue(task, append(base, opts...)...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// BuildServerConfig 生成 worker 的 redis 连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency:    defaultConcurrency,
		Queues:         map[string]int{DefaultQueue: 1},
		RetryDelayFunc: RetryDelay,
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return buildRedisOpt(cfg), serverCfg
}

func resolveMaxRetry(cfg *config.QueueConfig) int {
	if cfg != nil && cfg.MaxRetry > 0 {
		return cfg.MaxRetry
	}
	return DefaultMaxRetry
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
