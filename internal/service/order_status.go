package service

import (
	"strings"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

var knownOrderStatuses = map[string]struct{}{
	constants.OrderStatusPending:    {},
	constants.OrderStatusProcessing: {},
	constants.OrderStatusShipped:    {},
	constants.OrderStatusDelivered:  {},
	constants.OrderStatusCancelled:  {},
	constants.OrderStatusReturned:   {},
	constants.OrderStatusRefunded:   {},
}

// Intent 状态变更产生的副作用意图，由调用方在同一事务内执行
type Intent interface {
	intent()
}

// AwardPointsIntent 发放订单积分
type AwardPointsIntent struct {
	OrderID uint
}

func (AwardPointsIntent) intent() {}

// Transition 状态变更结果
type Transition struct {
	From    string
	To      string
	At      time.Time
	Updates map[string]interface{}
	Intents []Intent
}

// Changed 状态是否发生变化
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Apply 将变更写回内存中的订单
func (t Transition) Apply(order *models.Order) {
	order.Status = t.To
	order.UpdatedAt = t.At
	if at, ok := t.Updates["delivered_at"].(time.Time); ok {
		order.DeliveredAt = &at
	}
}

// NormalizeOrderStatus 统一大写并校验状态
func NormalizeOrderStatus(status string) (string, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if _, ok := knownOrderStatuses[status]; !ok {
		return "", ErrOrderStatusInvalid
	}
	return status, nil
}

// TransitionOrder 计算状态变更，不修改传入的订单，由调用方 Apply
// 后台可任意改状态；仅在从非 DELIVERED 进入 DELIVERED 时产生发积分意图
func TransitionOrder(order *models.Order, newStatus string, now time.Time) (Transition, error) {
	if order == nil {
		return Transition{}, ErrOrderNotFound
	}
	to, err := NormalizeOrderStatus(newStatus)
	if err != nil {
		return Transition{}, err
	}
	t := Transition{
		From:    order.Status,
		To:      to,
		At:      now,
		Updates: map[string]interface{}{},
	}
	if to == constants.OrderStatusDelivered && order.Status != constants.OrderStatusDelivered {
		if order.DeliveredAt == nil {
			t.Updates["delivered_at"] = now
		}
		t.Intents = append(t.Intents, AwardPointsIntent{OrderID: order.ID})
	}
	return t, nil
}
