package shared

// messages 错误消息键到对外文案
var messages = map[string]string{
	"error.bad_request":             "invalid request",
	"error.validation":              "request validation failed",
	"error.unauthorized":            "authentication required",
	"error.forbidden":               "permission denied",
	"error.too_many_requests":       "too many requests, please retry later",
	"error.internal":                "internal server error",
	"error.user_id_invalid":         "invalid user id",
	"error.admin_id_invalid":        "invalid admin id",
	"error.role_unknown":            "unknown role",
	"error.email_invalid":           "invalid email address",
	"error.email_exists":            "email already registered",
	"error.password_weak":           "password must be at least 8 characters and contain letters and numbers",
	"error.login_invalid":           "invalid email or password",
	"error.admin_login_invalid":     "invalid username or password",
	"error.user_disabled":           "account disabled",
	"error.login_failed":            "login failed",
	"error.register_failed":         "registration failed",
	"error.token_invalid":           "invalid or expired token",
	"error.product_not_found":       "product not found",
	"error.variant_not_found":       "selected size/color is not available",
	"error.insufficient_stock":      "insufficient stock",
	"error.cart_item_not_found":     "cart item not found",
	"error.cart_fetch_failed":       "failed to load cart",
	"error.cart_update_failed":      "failed to update cart",
	"error.cart_empty":              "cart is empty",
	"error.too_many_active_orders":  "too many active orders, please wait for existing orders to complete",
	"error.coupon_already_used":     "coupon was just used by another order, please retry",
	"error.order_not_found":         "order not found",
	"error.order_status_invalid":    "invalid order status",
	"error.order_create_failed":     "failed to create order",
	"error.order_fetch_failed":      "failed to load orders",
	"error.order_update_failed":     "failed to update order",
	"error.coupon_invalid":          "coupon must define a percentage or a fixed amount",
	"error.coupon_code_exists":      "coupon code already exists",
	"error.coupon_create_failed":    "failed to create coupon",
	"error.coupon_fetch_failed":     "failed to load coupons",
	"error.points_below_minimum":    "minimum 100 points required for conversion",
	"error.insufficient_points":     "insufficient points",
	"error.loyalty_fetch_failed":    "failed to load loyalty profile",
	"error.loyalty_convert_failed":  "failed to convert points",
	"error.notification_not_found":  "notification not found",
	"error.notification_failed":     "failed to load notifications",
}

// Message 返回消息键对应文案，未登记的键原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
