package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/atlas-shop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmation 下单确认邮件任务
	TaskOrderConfirmation = constants.TaskOrderConfirmation
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail

	retryBaseDelay = time.Second
	retryMaxDelay  = 10 * time.Minute
)

// OrderConfirmationPayload 下单确认任务载荷
type OrderConfirmationPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

func newTask(typename string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, body), nil
}

// DecodePayload 解析任务载荷
func DecodePayload[T any](task *asynq.Task) (T, error) {
	var payload T
	if task == nil {
		return payload, fmt.Errorf("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	return payload, nil
}

// NewOrderConfirmationTask 创建下单确认任务
func NewOrderConfirmationTask(payload OrderConfirmationPayload) (*asynq.Task, error) {
	return newTask(TaskOrderConfirmation, payload)
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newTask(TaskOrderStatusEmail, payload)
}

// RetryDelay 指数退避：第 n 次重试等待 2^n 秒，上限 10 分钟
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	if n > 20 {
		return retryMaxDelay
	}
	delay := retryBaseDelay << uint(n)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}
