package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项（下单时的商品快照，不随商品后续改价变化）
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                      // 订单ID
	ProductID    *uint     `gorm:"index" json:"product_id,omitempty"`                   // 商品ID（商品删除后为空）
	ProductName  string    `gorm:"type:varchar(255);not null" json:"product_name"`      // 商品名称快照
	ProductPrice Money     `gorm:"type:decimal(10,2);not null" json:"product_price"`    // 下单时单价
	Size         string    `gorm:"type:varchar(50);default:''" json:"size"`             // 尺码
	Color        string    `gorm:"type:varchar(20);default:''" json:"color"`            // 颜色
	Quantity     int       `gorm:"not null;default:1" json:"quantity"`                  // 数量
	CreatedAt    time.Time `json:"created_at"`                                          // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 行小计
func (i OrderItem) Subtotal() Money {
	return NewMoneyFromDecimal(i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
