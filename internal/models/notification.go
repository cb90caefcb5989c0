package models

import "time"

// Notification 站内通知
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID    uint      `gorm:"index;not null" json:"user_id"`                 // 用户ID
	Type      string    `gorm:"type:varchar(30);not null;default:''" json:"type"` // 通知类型
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`       // 标题
	Message   string    `gorm:"type:text;not null" json:"message"`             // 内容
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`   // 是否已读
	CreatedAt time.Time `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
