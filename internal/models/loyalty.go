package models

import (
	"time"
)

// LoyaltyProfile 会员积分档案（每个用户一条，仅由积分引擎修改）
type LoyaltyProfile struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                   // 主键
	UserID              uint      `gorm:"uniqueIndex;not null" json:"user_id"`                    // 用户ID
	Points              int       `gorm:"not null;default:0" json:"points"`                       // 可用积分
	TotalLifetimePoints int       `gorm:"not null;default:0" json:"total_lifetime_points"`        // 累计获得积分（只增不减，用于定级）
	Tier                string    `gorm:"type:varchar(20);not null;default:'BRONZE'" json:"tier"` // 会员等级
	CreatedAt           time.Time `json:"created_at"`                                             // 创建时间
	UpdatedAt           time.Time `json:"updated_at"`                                             // 更新时间

	History []LoyaltyHistory `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"history,omitempty"` // 积分流水
}

// TableName 指定表名
func (LoyaltyProfile) TableName() string {
	return "loyalty_profiles"
}

// LoyaltyHistory 积分流水（只追加，不更新不删除）
type LoyaltyHistory struct {
	ID            uint      `gorm:"primarykey" json:"id"`                          // 主键
	ProfileID     uint      `gorm:"index;not null" json:"profile_id"`              // 积分档案ID
	Type          string    `gorm:"type:varchar(10);index;not null" json:"type"`   // 类型（EARN/SPEND/BONUS）
	Points        int       `gorm:"not null" json:"points"`                        // 积分变动（支出为负）
	BalanceBefore int       `gorm:"not null;default:0" json:"balance_before"`      // 变动前余额
	BalanceAfter  int       `gorm:"not null;default:0" json:"balance_after"`       // 变动后余额
	Description   string    `gorm:"type:varchar(255);not null" json:"description"` // 描述
	OrderNo       string    `gorm:"type:varchar(100);index;default:''" json:"order_no,omitempty"` // 关联订单编号
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (LoyaltyHistory) TableName() string {
	return "loyalty_histories"
}
