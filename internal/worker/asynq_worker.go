package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/provider"
	"github.com/atlas-shop/internal/queue"
	"github.com/atlas-shop/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmation, c.handleOrderConfirmation)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderConfirmation(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmation_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.DecodePayload[queue.OrderConfirmationPayload](task)
	if err != nil {
		logger.Warnw("worker_order_confirmation_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmation_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if !c.EmailService.Enabled() {
		logger.Debugw("worker_order_confirmation_skip_email_disabled", "order_id", payload.OrderID)
		return nil
	}
	order, user, err := c.loadOrderRecipient(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirmation_fetch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil || user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_order_confirmation_skip_no_receiver", "order_id", payload.OrderID)
		return nil
	}
	if err := c.EmailService.SendOrderConfirmation(strings.TrimSpace(user.Email), user, order); err != nil {
		logger.Warnw("worker_order_confirmation_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", user.Email,
			"error", err,
		)
		return retryableEmailError(err)
	}
	logger.Infow("worker_order_confirmation_sent", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.DecodePayload[queue.OrderStatusEmailPayload](task)
	if err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if !c.EmailService.Enabled() {
		logger.Debugw("worker_order_status_email_skip_email_disabled", "order_id", payload.OrderID)
		return nil
	}
	order, user, err := c.loadOrderRecipient(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil || user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_order_status_email_skip_no_receiver", "order_id", payload.OrderID)
		return nil
	}
	input := buildOrderStatusEmailInput(order, user, payload.Status)
	if err := c.EmailService.SendOrderStatusEmail(strings.TrimSpace(user.Email), input); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", user.Email,
			"status", input.Status,
			"error", err,
		)
		return retryableEmailError(err)
	}
	return nil
}

func (c *Consumer) loadOrderRecipient(orderID uint) (*models.Order, *models.User, error) {
	if c.OrderRepo == nil || c.UserRepo == nil {
		return nil, nil, errors.New("worker repositories not initialized")
	}
	order, err := c.OrderRepo.GetByID(orderID)
	if err != nil || order == nil {
		return nil, nil, err
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		return nil, nil, err
	}
	return order, user, nil
}

// buildOrderStatusEmailInput 载荷状态为空时以订单当前状态为准
func buildOrderStatusEmailInput(order *models.Order, user *models.User, status string) service.OrderStatusEmailInput {
	input := service.OrderStatusEmailInput{}
	if order == nil {
		return input
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = order.Status
	}
	input.OrderNo = order.OrderNo
	input.Status = status
	input.Amount = order.TotalAmount
	input.TrackingNumber = strings.TrimSpace(order.TrackingNumber)
	if user != nil {
		input.CustomerName = user.DisplayName()
	}
	return input
}

// retryableEmailError 收件人被拒或邮件未配置时不再重试
func retryableEmailError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrEmailServiceDisabled):
		return fmt.Errorf("%w: %w", asynq.SkipRetry, err)
	default:
		return err
	}
}
