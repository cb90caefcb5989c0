package models

import (
	"time"
)

// Order 订单表
// 收货信息为下单时快照；TotalAmount 仅在创建时计算一次，不再根据订单项重算
type Order struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_no"`       // 订单编号
	UserID          uint       `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	ShippingAddress string     `gorm:"type:text;not null" json:"shipping_address"`                   // 收货地址
	ShippingCity    string     `gorm:"type:varchar(50);not null" json:"shipping_city"`               // 收货城市
	ShippingPhone   string     `gorm:"type:varchar(50);not null" json:"shipping_phone"`              // 收货电话
	Status          string     `gorm:"type:varchar(20);index;not null" json:"status"`                // 订单状态
	PaymentMethod   string     `gorm:"type:varchar(20);not null" json:"payment_method"`              // 支付方式
	IsPaid          bool       `gorm:"not null;default:false" json:"is_paid"`                        // 是否已支付
	SubtotalAmount  Money      `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal_amount"` // 商品小计
	ShippingFee     Money      `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_fee"`    // 运费
	DiscountAmount  Money      `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount     Money      `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`    // 实付金额
	CouponID        *uint      `gorm:"index" json:"coupon_id,omitempty"`                              // 优惠券ID
	TrackingNumber  string     `gorm:"type:varchar(100);default:''" json:"tracking_number"`          // 物流单号
	Note            string     `gorm:"type:text" json:"note"`                                         // 备注
	DeliveredAt     *time.Time `json:"delivered_at"`                                                  // 签收时间
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                    // 更新时间

	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
	Coupon *Coupon     `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`                            // 使用的优惠券
	User   *User       `gorm:"foreignKey:UserID" json:"-"`                                             // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
