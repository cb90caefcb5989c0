package public

import (
	"errors"

	handlershared "github.com/atlas-shop/internal/http/handlers/shared"
	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		respondStockError(c, stockErr)
		return
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		handlershared.RespondErrorWithData(c, response.CodeBadRequest, "error.validation", gin.H{
			"fields": validationErr.Fields,
		})
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// respondStockError 逐项返回库存失败明细
func respondStockError(c *gin.Context, stockErr *service.StockError) {
	key := "error.insufficient_stock"
	if errors.Is(stockErr, service.ErrVariantNotFound) {
		key = "error.variant_not_found"
	}
	handlershared.RespondErrorWithData(c, response.CodeUnprocessableEntity, key, gin.H{
		"product_id":   stockErr.ProductID,
		"product_name": stockErr.ProductName,
		"size":         stockErr.Size,
		"color":        stockErr.Color,
		"requested":    stockErr.Requested,
		"available":    stockErr.Available,
	})
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrShippingCityInvalid, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrTooManyActiveOrders, code: response.CodeTooManyRequests, key: "error.too_many_active_orders"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeUnprocessableEntity, key: "error.coupon_already_used"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
}

var loyaltyConvertErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, key: "error.validation"},
	{target: service.ErrPointsBelowMinimum, code: response.CodeBadRequest, key: "error.points_below_minimum"},
	{target: service.ErrInsufficientPoints, code: response.CodeUnprocessableEntity, key: "error.insufficient_points"},
}

var userAuthErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailExists, code: response.CodeBadRequest, key: "error.email_exists"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, key: "error.password_weak"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.login_invalid"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(checkoutErrorRules, cartErrorRules), response.CodeInternal, "error.order_create_failed")
}
