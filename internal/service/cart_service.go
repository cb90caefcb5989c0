package service

import (
	"strings"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Subtotal  models.Money    `json:"subtotal"`
	Product   *models.Product `json:"product"`
}

// CartView 购物车视图
type CartView struct {
	Items    []CartItemDetail `json:"items"`
	Subtotal models.Money     `json:"subtotal"`
}

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	UserID    uint
	ProductID uint
	Size      string
	Color     string
	Quantity  int
}

// Validate 校验输入
func (in AddCartItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.ProductID, validation.Required),
		validation.Field(&in.Quantity, validation.Required, validation.Min(1), validation.Max(99)),
		validation.Field(&in.Size, validation.Length(0, 50)),
		validation.Field(&in.Color, validation.Length(0, 20)),
	)
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// normalizeCartColor 颜色统一大写，NONE 视为未选择
func normalizeCartColor(color string) string {
	color = strings.ToUpper(strings.TrimSpace(color))
	if color == constants.ColorNone {
		return ""
	}
	return color
}

// GetCart 获取用户购物车
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: make([]CartItemDetail, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		product := item.Product
		if product == nil || !product.IsActive {
			if _, err := s.cartRepo.DeleteItem(cart.ID, item.ID); err != nil {
				return nil, err
			}
			continue
		}
		line := models.NewMoneyFromDecimal(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		subtotal = subtotal.Add(line.Decimal)
		view.Items = append(view.Items, CartItemDetail{
			ID:        item.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  line,
			Product:   product,
		})
	}
	view.Subtotal = models.NewMoneyFromDecimal(subtotal)
	return view, nil
}

// AddItem 加入购物车；同一 (商品, 尺码, 颜色) 合并数量，合并后数量不得超过规格库存
func (s *CartService) AddItem(input AddCartItemInput) (*models.CartItem, error) {
	if err := input.Validate(); err != nil {
		return nil, newValidationError(err)
	}
	size := strings.TrimSpace(input.Size)
	color := normalizeCartColor(input.Color)

	product, err := s.productRepo.GetActiveByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(input.UserID)
	if err != nil {
		return nil, err
	}
	existing, err := s.cartRepo.FindItem(cart.ID, product.ID, size, color)
	if err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if err := s.checkAvailability(product, size, color, quantity); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.cartRepo.UpdateItemQuantity(existing.ID, quantity); err != nil {
			return nil, err
		}
		existing.Quantity = quantity
		return existing, nil
	}
	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
	}
	if err := s.cartRepo.CreateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity 修改购物车项数量
func (s *CartService) UpdateItemQuantity(userID, itemID uint, quantity int) error {
	if err := validation.Validate(quantity, validation.Required, validation.Min(1), validation.Max(99)); err != nil {
		return newValidationError(err)
	}
	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return err
	}
	item, err := s.cartRepo.GetItemByID(cart.ID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartItemNotFound
	}
	product, err := s.productRepo.GetActiveByID(item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.checkAvailability(product, item.Size, item.Color, quantity); err != nil {
		return err
	}
	return s.cartRepo.UpdateItemQuantity(item.ID, quantity)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) error {
	cart, err := s.cartRepo.GetOrCreateCart(userID)
	if err != nil {
		return err
	}
	deleted, err := s.cartRepo.DeleteItem(cart.ID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCartItemNotFound
	}
	return nil
}

// checkAvailability 加购时的库存预检（不加锁，下单时再以行锁为准）
func (s *CartService) checkAvailability(product *models.Product, size, color string, quantity int) error {
	if size == "" && color == "" {
		if !product.InStock {
			return &StockError{Err: ErrInsufficientStock, ProductID: product.ID, ProductName: product.Title, Requested: quantity}
		}
		return nil
	}
	variant, err := s.productRepo.FindVariant(product.ID, size, color)
	if err != nil {
		return err
	}
	if variant == nil {
		return &StockError{Err: ErrVariantNotFound, ProductID: product.ID, ProductName: product.Title, Size: size, Color: color, Requested: quantity}
	}
	if variant.Quantity < quantity {
		return &StockError{
			Err:         ErrInsufficientStock,
			ProductID:   product.ID,
			ProductName: product.Title,
			Size:        size,
			Color:       color,
			Requested:   quantity,
			Available:   variant.Quantity,
		}
	}
	return nil
}
