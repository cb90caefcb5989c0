package models

import (
	"time"
)

// 优惠券来源
const (
	CouponSourceAdmin   = "admin"
	CouponSourceLoyalty = "loyalty"
)

// Coupon 优惠券（单次使用）
// 固定金额 > 0 时优先于百分比
type Coupon struct {
	ID                  uint       `gorm:"primarykey" json:"id"`                                                // 主键
	Code                string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`                  // 优惠码
	DiscountPercentage  int        `gorm:"not null;default:0" json:"discount_percentage"`                      // 折扣百分比（0-100）
	FixedDiscountAmount Money      `gorm:"type:decimal(10,2);not null;default:0" json:"fixed_discount_amount"` // 固定减免金额
	ValidFrom           time.Time  `gorm:"not null" json:"valid_from"`                                         // 生效时间
	ValidTo             time.Time  `gorm:"not null" json:"valid_to"`                                           // 失效时间
	Active              bool       `gorm:"not null" json:"active"`                                             // 是否启用
	OwnerID             *uint      `gorm:"index" json:"owner_id,omitempty"`                                    // 绑定用户（为空表示公共券）
	IsUsed              bool       `gorm:"not null;default:false;index" json:"is_used"`                        // 是否已使用
	UsedAt              *time.Time `json:"used_at"`                                                            // 使用时间
	Source              string     `gorm:"type:varchar(20);not null;default:'admin'" json:"source"`            // 来源（admin/loyalty）
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt           time.Time  `json:"updated_at"`                                                         // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
