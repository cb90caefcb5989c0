package models

import (
	"time"
)

// ProductVariant 商品规格库存（尺码 + 颜色维度）
// (product_id, size, color) 唯一；未设置尺码时 size 为空串，未设置颜色时为 NONE
type ProductVariant struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                                     // 主键
	ProductID   uint      `gorm:"not null;uniqueIndex:idx_variant_identity" json:"product_id"`                              // 商品ID
	Size        string    `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_variant_identity" json:"size"`        // 尺码
	Color       string    `gorm:"type:varchar(20);not null;default:'NONE';uniqueIndex:idx_variant_identity" json:"color"`   // 颜色
	SKUModifier string    `gorm:"column:sku_modifier;type:varchar(50);default:''" json:"sku_modifier"`                      // SKU 后缀
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`                                                       // 可售库存（>= 0）
	CreatedAt   time.Time `json:"created_at"`                                                                               // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                                               // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
