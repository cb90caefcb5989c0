package models

import (
	"time"
)

// User 用户表
type User struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                            // 主键
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`               // 邮箱
	PasswordHash       string     `gorm:"not null" json:"-"`                               // 密码哈希（不返回给前端）
	FirstName          string     `gorm:"type:varchar(100);default:''" json:"first_name"`  // 名
	LastName           string     `gorm:"type:varchar(100);default:''" json:"last_name"`   // 姓
	Phone              string     `gorm:"type:varchar(50);default:''" json:"phone"`        // 手机号
	Status             string     `gorm:"default:'active'" json:"status"`                  // 账号状态
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`                     // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`                                  // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time `json:"last_login_at"`                                   // 最后登录时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                      // 更新时间

	// 购物车与积分档案随用户级联删除
	Cart           *ShoppingCart   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LoyaltyProfile *LoyaltyProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// DisplayName 邮件称呼
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return "Valued Client"
}
