package service

import (
	"fmt"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"
)

// NotificationService 站内通知
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// NotificationPage 通知分页结果
type NotificationPage struct {
	Items  []models.Notification `json:"items"`
	Total  int64                 `json:"total"`
	Unread int64                 `json:"unread"`
}

// Notify 创建通知，失败只记录日志
func (s *NotificationService) Notify(userID uint, notificationType, title, message string) {
	if s == nil || s.repo == nil || userID == 0 {
		return
	}
	if err := s.repo.Create(&models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}); err != nil {
		logger.Warnw("notification_create_failed",
			"user_id", userID,
			"type", notificationType,
			"error", err,
		)
	}
}

// NotifyOrderPlaced 下单成功通知
func (s *NotificationService) NotifyOrderPlaced(order *models.Order) {
	if order == nil {
		return
	}
	s.Notify(order.UserID, constants.NotificationTypeOrderConfirmed,
		"Order received",
		fmt.Sprintf("Your order %s has been placed. Total: %s", order.OrderNo, order.TotalAmount.String()),
	)
}

// NotifyOrderStatus 订单状态变更通知
func (s *NotificationService) NotifyOrderStatus(order *models.Order, pointsAwarded int) {
	if order == nil {
		return
	}
	s.Notify(order.UserID, constants.NotificationTypeOrderStatus,
		"Order update",
		fmt.Sprintf("Your order %s is now %s.", order.OrderNo, order.Status),
	)
	if pointsAwarded > 0 {
		s.Notify(order.UserID, constants.NotificationTypeLoyalty,
			"Points earned",
			fmt.Sprintf("You earned %d loyalty points for order %s.", pointsAwarded, order.OrderNo),
		)
	}
}

// List 用户通知列表
func (s *NotificationService) List(filter repository.NotificationListFilter) (*NotificationPage, error) {
	if filter.UserID == 0 {
		return nil, ErrValidation
	}
	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(filter.UserID)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Items: items, Total: total, Unread: unread}, nil
}

// MarkRead 标记已读
func (s *NotificationService) MarkRead(userID, id uint) error {
	ok, err := s.repo.MarkRead(userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
