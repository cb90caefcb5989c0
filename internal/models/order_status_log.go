package models

import "time"

// OrderStatusLog 订单状态变更审计
type OrderStatusLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	OrderID      uint      `gorm:"index;not null" json:"order_id"`
	FromStatus   string    `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus     string    `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorAdminID uint      `gorm:"index;not null;default:0" json:"actor_admin_id"`
	DetailJSON   JSON      `gorm:"type:json" json:"detail"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
