package service

import (
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	"gorm.io/gorm"
)

// ReserveInput 库存预留输入
type ReserveInput struct {
	Product   *models.Product
	VariantID uint // 已解析的规格，0 表示按尺码颜色重新解析
	Size      string
	Color     string
	Quantity  int
}

// HasVariantSelection 是否指定了规格
func (in ReserveInput) HasVariantSelection() bool {
	return in.Size != "" || in.Color != ""
}

// InventoryService 库存台账：仅在下单事务内扣减
type InventoryService struct {
	productRepo repository.ProductRepository
}

// NewInventoryService 创建库存服务
func NewInventoryService(productRepo repository.ProductRepository) *InventoryService {
	return &InventoryService{productRepo: productRepo}
}

// ResolveVariant 按尺码颜色解析规格（不加锁）
func (s *InventoryService) ResolveVariant(tx *gorm.DB, input ReserveInput) (*models.ProductVariant, error) {
	variant, err := s.productRepo.WithTx(tx).FindVariant(input.Product.ID, input.Size, input.Color)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, input.stockError(ErrVariantNotFound, 0)
	}
	return variant, nil
}

// Reserve 在事务内校验并扣减库存
// 未选规格时仅检查商品 in_stock；否则锁定规格行直至事务结束
func (s *InventoryService) Reserve(tx *gorm.DB, input ReserveInput) error {
	if input.Product == nil {
		return ErrProductNotFound
	}
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !input.HasVariantSelection() {
		if !input.Product.InStock {
			return input.stockError(ErrInsufficientStock, 0)
		}
		return nil
	}

	variantID := input.VariantID
	if variantID == 0 {
		variant, err := s.ResolveVariant(tx, input)
		if err != nil {
			return err
		}
		variantID = variant.ID
	}

	variant, err := s.lockVariant(tx, variantID)
	if err != nil {
		return err
	}
	if variant == nil {
		return input.stockError(ErrVariantNotFound, 0)
	}
	if variant.Quantity-input.Quantity < 0 {
		return input.stockError(ErrInsufficientStock, variant.Quantity)
	}
	ok, err := s.productRepo.WithTx(tx).DecrementVariantQuantity(variant.ID, input.Quantity)
	if err != nil {
		return err
	}
	if !ok {
		return input.stockError(ErrInsufficientStock, variant.Quantity)
	}
	return nil
}

// lockVariant SELECT ... FOR UPDATE
func (s *InventoryService) lockVariant(tx *gorm.DB, variantID uint) (*models.ProductVariant, error) {
	return s.productRepo.WithTx(tx).GetVariantByIDForUpdate(variantID)
}

func (in ReserveInput) stockError(kind error, available int) *StockError {
	e := &StockError{
		Err:       kind,
		Size:      in.Size,
		Color:     in.Color,
		Requested: in.Quantity,
		Available: available,
	}
	if in.Product != nil {
		e.ProductID = in.Product.ID
		e.ProductName = in.Product.Title
	}
	return e
}
