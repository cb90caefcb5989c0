package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/metrics"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/queue"
	"github.com/atlas-shop/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务（查询与后台改状态）
type OrderService struct {
	orderRepo     repository.OrderRepository
	loyalty       *LoyaltyService
	notifications *NotificationService
	queueClient   *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, loyalty *LoyaltyService, notifications *NotificationService, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		loyalty:       loyalty,
		notifications: notifications,
		queueClient:   queueClient,
	}
}

// UpdateOrderStatusInput 后台更新订单状态输入
type UpdateOrderStatusInput struct {
	OrderID        uint
	Status         string
	TrackingNumber string
	ActorAdminID   uint
}

// UpdateStatusResult 状态更新结果
type UpdateStatusResult struct {
	Order         *models.Order `json:"order"`
	PointsAwarded int           `json:"points_awarded"`
	Changed       bool          `json:"changed"`
}

// UpdateStatus 锁定订单、应用状态变更并在同一事务内执行副作用
func (s *OrderService) UpdateStatus(ctx context.Context, input UpdateOrderStatusInput) (*UpdateStatusResult, error) {
	if input.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	if _, err := NormalizeOrderStatus(input.Status); err != nil {
		return nil, err
	}
	now := time.Now()
	result := &UpdateStatusResult{}
	var transition Transition

	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		transition, err = TransitionOrder(order, input.Status, now)
		if err != nil {
			return err
		}
		result.Order = order
		updates := transition.Updates
		tracking := strings.TrimSpace(input.TrackingNumber)
		trackingChanged := tracking != "" && tracking != order.TrackingNumber
		if !transition.Changed() && !trackingChanged {
			return nil
		}
		result.Changed = true
		if trackingChanged {
			updates["tracking_number"] = tracking
			order.TrackingNumber = tracking
		}
		transition.Apply(order)
		if err := orderRepo.UpdateStatus(order.ID, transition.To, updates); err != nil {
			return fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
		}
		if err := orderRepo.CreateStatusLog(&models.OrderStatusLog{
			OrderID:      order.ID,
			FromStatus:   transition.From,
			ToStatus:     transition.To,
			ActorAdminID: input.ActorAdminID,
			DetailJSON: models.JSON{
				"tracking_number": order.TrackingNumber,
				"intents":         len(transition.Intents),
			},
		}); err != nil {
			return err
		}

		for _, intent := range transition.Intents {
			switch it := intent.(type) {
			case AwardPointsIntent:
				earned, err := s.loyalty.AwardForOrder(tx, order)
				if err != nil {
					return fmt.Errorf("award points for order %d: %w", it.OrderID, err)
				}
				result.PointsAwarded += earned
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		logger.Infow("order_status_unchanged",
			"order_id", result.Order.ID,
			"status", transition.To,
			"actor_admin_id", input.ActorAdminID,
		)
		return result, nil
	}

	metrics.ObserveOrderTransition(transition.From, transition.To)
	logger.Infow("order_status_updated",
		"order_id", result.Order.ID,
		"order_no", result.Order.OrderNo,
		"from_status", transition.From,
		"to_status", transition.To,
		"actor_admin_id", input.ActorAdminID,
		"points_awarded", result.PointsAwarded,
	)
	s.afterStatusCommit(ctx, result)
	return result, nil
}

func (s *OrderService) afterStatusCommit(ctx context.Context, result *UpdateStatusResult) {
	order := result.Order
	if result.PointsAwarded > 0 && s.loyalty != nil {
		s.loyalty.InvalidateDashboard(ctx, order.UserID)
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  order.Status,
	}); err != nil {
		logger.Warnw("order_status_email_enqueue_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
	s.notifications.NotifyOrderStatus(order, result.PointsAwarded)
}

// ListByUser 用户订单列表
func (s *OrderService) ListByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" {
		status, err := NormalizeOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}
	return s.orderRepo.ListByUser(filter)
}

// GetByOrderNoAndUser 用户订单详情
func (s *OrderService) GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" {
		status, err := NormalizeOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}
	return s.orderRepo.ListAdmin(filter)
}

// AdminOrderDetail 后台订单详情
type AdminOrderDetail struct {
	Order      *models.Order           `json:"order"`
	StatusLogs []models.OrderStatusLog `json:"status_logs"`
}

// GetAdminDetail 后台订单详情（含状态变更记录）
func (s *OrderService) GetAdminDetail(id uint) (*AdminOrderDetail, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	logs, err := s.orderRepo.ListStatusLogs(id)
	if err != nil {
		return nil, err
	}
	return &AdminOrderDetail{Order: order, StatusLogs: logs}, nil
}
