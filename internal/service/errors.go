package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTokenInvalid       = errors.New("invalid token")

	ErrProductNotFound   = errors.New("product not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrTooManyActiveOrders  = errors.New("too many active orders")
	ErrShippingCityInvalid  = errors.New("shipping city invalid")
	ErrPaymentMethodInvalid = errors.New("payment method invalid")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderStatusInvalid   = errors.New("order status invalid")
	ErrOrderCreateFailed    = errors.New("order create failed")
	ErrOrderUpdateFailed    = errors.New("order update failed")

	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon inactive")
	ErrCouponNotStarted    = errors.New("coupon not started")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponUsed          = errors.New("coupon already used")
	ErrCouponOwnerMismatch = errors.New("coupon belongs to another user")
	ErrCouponAlreadyUsed   = errors.New("coupon consumed by a concurrent order")
	ErrCouponCodeExists    = errors.New("coupon code exists")
	ErrCouponInvalid       = errors.New("coupon invalid")

	ErrPointsBelowMinimum = errors.New("points below conversion minimum")
	ErrInsufficientPoints = errors.New("insufficient points")

	ErrNotificationNotFound      = errors.New("notification not found")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email")
)

// StockError 库存类失败，携带出错的商品信息供接口逐项展示
type StockError struct {
	Err         error
	ProductID   uint
	ProductName string
	Size        string
	Color       string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: product=%d size=%q color=%q requested=%d available=%d",
		e.Err, e.ProductID, e.Size, e.Color, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// ValidationError 请求字段校验失败
type ValidationError struct {
	Fields error
}

func (e *ValidationError) Error() string {
	if e.Fields == nil {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Fields.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

func newValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Fields: err}
}
