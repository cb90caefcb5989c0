package models

import (
	"time"
)

// ShoppingCart 购物车（每个用户一个）
type ShoppingCart struct {
	ID        uint      `gorm:"primarykey" json:"id"`               // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"` // 用户ID
	CreatedAt time.Time `json:"created_at"`                          // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                          // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

// CartItem 购物车项
// 尺码与颜色为自由文本，下单时才解析为具体规格
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                         // 主键
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"cart_id"`                            // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line" json:"product_id"`                         // 商品ID
	Size      string    `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_cart_line" json:"size"`   // 尺码
	Color     string    `gorm:"type:varchar(20);not null;default:'';uniqueIndex:idx_cart_line" json:"color"`  // 颜色
	Quantity  int       `gorm:"not null" json:"quantity"`                                                     // 数量
	CreatedAt time.Time `json:"created_at"`                                                                   // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                                   // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// HasVariantSelection 是否选择了规格
func (i CartItem) HasVariantSelection() bool {
	return i.Size != "" || i.Color != ""
}
