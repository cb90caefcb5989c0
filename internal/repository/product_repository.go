package repository

import (
	"errors"

	"github.com/atlas-shop/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品与规格库存数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetActiveByID(id uint) (*models.Product, error)
	FindVariant(productID uint, size, color string) (*models.ProductVariant, error)
	GetVariantByIDForUpdate(id uint) (*models.ProductVariant, error)
	DecrementVariantQuantity(id uint, quantity int) (bool, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 根据 ID 获取商品（含下架）
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetActiveByID 获取上架商品
func (r *GormProductRepository) GetActiveByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("id = ? AND is_active = ?", id, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindVariant 按 (商品, 尺码, 颜色) 解析规格，空值条件不参与过滤
func (r *GormProductRepository) FindVariant(productID uint, size, color string) (*models.ProductVariant, error) {
	query := r.db.Where("product_id = ?", productID)
	if size != "" {
		query = query.Where("size = ?", size)
	}
	if color != "" {
		query = query.Where("color = ?", color)
	}
	var variant models.ProductVariant
	if err := query.Order("id asc").First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// GetVariantByIDForUpdate 对规格行加排他锁，锁持有至事务结束
func (r *GormProductRepository) GetVariantByIDForUpdate(id uint) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := forUpdate(r.db).First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// DecrementVariantQuantity 扣减库存，库存不足时不更新并返回 false
func (r *GormProductRepository) DecrementVariantQuantity(id uint, quantity int) (bool, error) {
	result := r.db.Model(&models.ProductVariant{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
