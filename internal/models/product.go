package models

import (
	"time"
)

// Product 商品表（目录只读，下单时仅读取价格与上架状态）
type Product struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                         // 主键
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`                      // 标题
	Slug             string    `gorm:"uniqueIndex;not null" json:"slug"`                             // 唯一标识
	SKU              string    `gorm:"column:sku;type:varchar(100);uniqueIndex;not null" json:"sku"` // 库存编码
	ShortDescription string    `gorm:"type:varchar(165);default:''" json:"short_description"`        // 简介
	Price            Money     `gorm:"type:decimal(10,2);not null;default:0" json:"price"`           // 售价
	OldPrice         *Money    `gorm:"type:decimal(10,2)" json:"old_price,omitempty"`                // 划线价
	Specifications   JSON      `gorm:"type:json" json:"specifications"`                              // 规格参数
	InStock          bool      `gorm:"not null;default:true" json:"in_stock"`                        // 是否有货（无规格商品的唯一库存开关）
	IsActive         bool      `gorm:"not null;default:true;index" json:"is_active"`                 // 是否上架
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                   // 更新时间

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"` // 规格库存
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
