package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/metrics"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/queue"
	"github.com/atlas-shop/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ]{8,20}$`)

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID          uint
	ShippingAddress string
	ShippingCity    string
	ShippingPhone   string
	PaymentMethod   string
	CouponCode      string
	Note            string
}

// Validate 校验输入，城市与支付方式不受支持时返回对应的哨兵错误
func (in PlaceOrderInput) Validate() error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.ShippingAddress, validation.Required, validation.Length(5, 500)),
		validation.Field(&in.ShippingCity, validation.Required),
		validation.Field(&in.ShippingPhone, validation.Required, validation.Match(phonePattern)),
		validation.Field(&in.PaymentMethod, validation.Required),
		validation.Field(&in.CouponCode, validation.Length(0, 50)),
		validation.Field(&in.Note, validation.Length(0, 1000)),
	); err != nil {
		return newValidationError(err)
	}
	if !IsShippingCity(in.ShippingCity) {
		return ErrShippingCityInvalid
	}
	if !isPaymentMethod(in.PaymentMethod) {
		return ErrPaymentMethodInvalid
	}
	return nil
}

func isPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCOD, constants.PaymentMethodCard, constants.PaymentMethodPaypal:
		return true
	}
	return false
}

func (in PlaceOrderInput) normalized() PlaceOrderInput {
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.ShippingCity = strings.ToUpper(strings.TrimSpace(in.ShippingCity))
	in.ShippingPhone = strings.TrimSpace(in.ShippingPhone)
	in.PaymentMethod = strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if in.PaymentMethod == "" {
		in.PaymentMethod = constants.PaymentMethodCOD
	}
	in.CouponCode = strings.TrimSpace(in.CouponCode)
	in.Note = strings.TrimSpace(in.Note)
	return in
}

// CheckoutService 下单编排：单事务内完成准入、库存、优惠券、订单写入与清空购物车
type CheckoutService struct {
	cfg           config.CheckoutConfig
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	inventory     *InventoryService
	coupons       *CouponService
	notifications *NotificationService
	queueClient   *queue.Client
	now           func() time.Time
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(
	cfg config.CheckoutConfig,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	inventory *InventoryService,
	coupons *CouponService,
	notifications *NotificationService,
	queueClient *queue.Client,
) *CheckoutService {
	return &CheckoutService{
		cfg:           cfg,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		inventory:     inventory,
		coupons:       coupons,
		notifications: notifications,
		queueClient:   queueClient,
		now:           time.Now,
	}
}

func (s *CheckoutService) maxActiveOrders() int64 {
	if s.cfg.MaxActiveOrders > 0 {
		return int64(s.cfg.MaxActiveOrders)
	}
	return 3
}

func (s *CheckoutService) activeOrderWindow() int {
	if s.cfg.ActiveOrderWindowDays > 0 {
		return s.cfg.ActiveOrderWindowDays
	}
	return 30
}

type checkoutLine struct {
	cartItem models.CartItem
	reserve  ReserveInput
}

// PlaceOrder 下单
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	input = input.normalized()
	if err := input.Validate(); err != nil {
		metrics.ObserveCheckout(checkoutOutcome(err))
		return nil, err
	}

	now := s.now()
	var order *models.Order
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		placed, err := s.placeOrderTx(tx, input, now)
		if err != nil {
			return err
		}
		order = placed
		return nil
	})
	if err != nil {
		outcome := checkoutOutcome(err)
		metrics.ObserveCheckout(outcome)
		logger.Infow("checkout_rejected",
			"user_id", input.UserID,
			"outcome", outcome,
			"error", err,
		)
		return nil, err
	}
	metrics.ObserveCheckout("committed")

	logger.Infow("checkout_committed",
		"user_id", order.UserID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"total_amount", order.TotalAmount.String(),
		"coupon_id", order.CouponID,
	)
	s.afterCommit(order)
	return order, nil
}

func (s *CheckoutService) placeOrderTx(tx *gorm.DB, input PlaceOrderInput, now time.Time) (*models.Order, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	orderRepo := s.orderRepo.WithTx(tx)
	productRepo := s.productRepo.WithTx(tx)

	// 锁购物车行，同一用户的并发下单在此串行
	cart, err := cartRepo.LockCart(input.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrEmptyCart
	}
	cartItems, err := cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	since := now.AddDate(0, 0, -s.activeOrderWindow())
	active, err := orderRepo.CountActiveSince(input.UserID, constants.ActiveOrderStatuses, since)
	if err != nil {
		return nil, err
	}
	if active >= s.maxActiveOrders() {
		return nil, ErrTooManyActiveOrders
	}

	zero := models.NewMoneyFromDecimal(decimal.Zero)
	order := &models.Order{
		OrderNo:         generateOrderNo(input.UserID, now),
		UserID:          input.UserID,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingPhone:   input.ShippingPhone,
		Status:          constants.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingFee:     ShippingFee(s.cfg, input.ShippingCity),
		SubtotalAmount:  zero,
		DiscountAmount:  zero,
		TotalAmount:     zero,
		Note:            input.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	coupon, err := s.coupons.ResolveForCheckout(tx, input.CouponCode, input.UserID, now)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(cartItems, func(i, j int) bool { return cartItems[i].ID < cartItems[j].ID })
	lines := make([]checkoutLine, 0, len(cartItems))
	for _, item := range cartItems {
		product, err := productRepo.GetActiveByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
		}
		reserve := ReserveInput{
			Product:  product,
			Size:     item.Size,
			Color:    item.Color,
			Quantity: item.Quantity,
		}
		if reserve.HasVariantSelection() {
			variant, err := s.inventory.ResolveVariant(tx, reserve)
			if err != nil {
				return nil, err
			}
			reserve.VariantID = variant.ID
		}
		lines = append(lines, checkoutLine{cartItem: item, reserve: reserve})
	}

	// 按规格 ID 升序加锁，避免不同用户交叉加锁死锁
	lockOrder := make([]int, len(lines))
	for i := range lockOrder {
		lockOrder[i] = i
	}
	sort.SliceStable(lockOrder, func(a, b int) bool {
		return lines[lockOrder[a]].reserve.VariantID < lines[lockOrder[b]].reserve.VariantID
	})
	for _, idx := range lockOrder {
		if err := s.inventory.Reserve(tx, lines[idx].reserve); err != nil {
			return nil, err
		}
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		productID := line.reserve.Product.ID
		item := models.OrderItem{
			OrderID:      order.ID,
			ProductID:    &productID,
			ProductName:  line.reserve.Product.Title,
			ProductPrice: line.reserve.Product.Price,
			Size:         line.cartItem.Size,
			Color:        line.cartItem.Color,
			Quantity:     line.cartItem.Quantity,
			CreatedAt:    now,
		}
		subtotal = subtotal.Add(item.Subtotal().Decimal)
		items = append(items, item)
	}

	order.SubtotalAmount = models.NewMoneyFromDecimal(subtotal)
	order.DiscountAmount = s.coupons.Discount(coupon, order.SubtotalAmount)
	order.TotalAmount = models.NewMoneyFromDecimal(
		order.SubtotalAmount.Sub(order.DiscountAmount.Decimal).Add(order.ShippingFee.Decimal),
	)
	if coupon != nil {
		order.CouponID = &coupon.ID
		order.Coupon = coupon
	}
	if err := orderRepo.UpdateTotals(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	if err := s.coupons.Consume(tx, coupon, now); err != nil {
		return nil, err
	}

	if err := orderRepo.CreateItems(items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}
	if err := cartRepo.ClearItems(cart.ID); err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *CheckoutService) afterCommit(order *models.Order) {
	if err := s.queueClient.EnqueueOrderConfirmation(order.ID); err != nil {
		logger.Warnw("checkout_enqueue_confirmation_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	s.notifications.NotifyOrderPlaced(order)
}

// checkoutOutcome 下单失败归类，用作指标标签
func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrShippingCityInvalid), errors.Is(err, ErrPaymentMethodInvalid):
		return "invalid_input"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrTooManyActiveOrders):
		return "too_many_active_orders"
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrVariantNotFound), errors.Is(err, ErrProductNotFound):
		return "stock"
	case errors.Is(err, ErrCouponInvalid), errors.Is(err, ErrCouponNotFound), errors.Is(err, ErrCouponInactive),
		errors.Is(err, ErrCouponNotStarted), errors.Is(err, ErrCouponExpired), errors.Is(err, ErrCouponUsed),
		errors.Is(err, ErrCouponOwnerMismatch), errors.Is(err, ErrCouponAlreadyUsed):
		return "coupon"
	default:
		return "error"
	}
}
