package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

func TestPlaceOrderTotalsWithoutCoupon(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "a@atlas.ma")
	product := env.createProduct(t, "shirt", "100.00", true)
	variant := env.createVariant(t, product.ID, "M", constants.ColorBlack, 5)
	env.addToCart(t, user.ID, product.ID, "M", "black", 2)

	order, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "casablanca", ""))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.TotalAmount.String() != "210.00" {
		t.Fatalf("total want 210.00 got %s", order.TotalAmount.String())
	}
	if order.ShippingFee.String() != "10.00" || order.SubtotalAmount.String() != "200.00" {
		t.Fatalf("unexpected shipping/subtotal: %s/%s", order.ShippingFee.String(), order.SubtotalAmount.String())
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want PENDING got %s", order.Status)
	}
	if got := env.variantQuantity(t, variant.ID); got != 3 {
		t.Fatalf("variant quantity want 3 got %d", got)
	}

	var lines int64
	env.db.Model(&models.CartItem{}).Count(&lines)
	if lines != 0 {
		t.Fatalf("cart should be cleared, got %d lines", lines)
	}

	var items []models.OrderItem
	if err := env.db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 || items[0].ProductPrice.String() != "100.00" {
		t.Fatalf("unexpected order items: %+v", items)
	}

	var notifications int64
	env.db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifications)
	if notifications != 1 {
		t.Fatalf("want 1 notification got %d", notifications)
	}
}

func TestPlaceOrderWithPercentCoupon(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "b@atlas.ma")
	product := env.createProduct(t, "dress", "100.00", true)
	env.createVariant(t, product.ID, "S", constants.ColorRed, 5)
	coupon := env.createCoupon(t, "TEN", 10, "0", nil)
	env.addToCart(t, user.ID, product.ID, "S", constants.ColorRed, 2)

	order, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "CASABLANCA", "TEN"))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.TotalAmount.String() != "190.00" || order.DiscountAmount.String() != "20.00" {
		t.Fatalf("want total 190.00 discount 20.00, got %s/%s", order.TotalAmount.String(), order.DiscountAmount.String())
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatalf("coupon should be attached, got %v", order.CouponID)
	}
	var reloaded models.Coupon
	env.db.First(&reloaded, coupon.ID)
	if !reloaded.IsUsed || reloaded.UsedAt == nil {
		t.Fatalf("coupon should be consumed: %+v", reloaded)
	}
}

func TestPlaceOrderTotalsInvariant(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "inv@atlas.ma")
	shirt := env.createProduct(t, "inv-shirt", "59.90", true)
	scarf := env.createProduct(t, "inv-scarf", "35.50", true)
	env.createVariant(t, shirt.ID, "L", constants.ColorWhite, 10)
	env.createCoupon(t, "FIX500", 0, "500.00", nil)
	env.addToCart(t, user.ID, shirt.ID, "L", constants.ColorWhite, 3)
	env.addToCart(t, user.ID, scarf.ID, "", "", 1)

	order, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "RABAT", "FIX500"))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	// 固定金额大于小计时优惠封顶为小计
	if order.SubtotalAmount.String() != "215.20" || order.DiscountAmount.String() != "215.20" {
		t.Fatalf("unexpected subtotal/discount %s/%s", order.SubtotalAmount.String(), order.DiscountAmount.String())
	}
	want := order.SubtotalAmount.Sub(order.DiscountAmount.Decimal).Add(order.ShippingFee.Decimal)
	if !order.TotalAmount.Equal(want) || order.TotalAmount.String() != "30.00" {
		t.Fatalf("total invariant broken: total=%s want=%s", order.TotalAmount.String(), want.String())
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "empty@atlas.ma")
	_, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "FES", ""))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart got %v", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()

	_, err := env.checkout.PlaceOrder(ctx, placeOrderInput(1, "ATLANTIS", ""))
	if !errors.Is(err, ErrShippingCityInvalid) {
		t.Fatalf("want ErrShippingCityInvalid got %v", err)
	}

	input := placeOrderInput(1, " fes ", "")
	input.PaymentMethod = "bitcoin"
	_, err = env.checkout.PlaceOrder(ctx, input)
	if !errors.Is(err, ErrPaymentMethodInvalid) {
		t.Fatalf("want ErrPaymentMethodInvalid got %v", err)
	}

	input = placeOrderInput(1, "FES", "")
	input.ShippingPhone = "not a phone"
	_, err = env.checkout.PlaceOrder(ctx, input)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation got %v", err)
	}

	// 必填项缺失优先于城市校验
	_, err = env.checkout.PlaceOrder(ctx, placeOrderInput(1, "", ""))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation for empty city got %v", err)
	}
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "stock@atlas.ma")
	product := env.createProduct(t, "jacket", "300.00", true)
	plenty := env.createProduct(t, "belt", "50.00", true)
	// 腰带规格 ID 更小，先于夹克加锁扣减
	belt := env.createVariant(t, plenty.ID, "", constants.ColorBlack, 10)
	jacket := env.createVariant(t, product.ID, "M", constants.ColorBrown, 1)
	env.addToCart(t, user.ID, plenty.ID, "", constants.ColorBlack, 2)
	env.addToCart(t, user.ID, product.ID, "M", constants.ColorBrown, 1)
	if err := env.db.Model(&models.ProductVariant{}).Where("id = ?", jacket.ID).Update("quantity", 0).Error; err != nil {
		t.Fatalf("drain stock failed: %v", err)
	}

	_, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "TANGER", ""))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}
	var stockErr *StockError
	if !errors.As(err, &stockErr) || stockErr.ProductID != product.ID {
		t.Fatalf("want itemized stock error for product %d, got %v", product.ID, err)
	}
	if got := env.variantQuantity(t, belt.ID); got != 10 {
		t.Fatalf("belt stock must be rolled back, got %d", got)
	}
	var orders int64
	env.db.Model(&models.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("no order should persist, got %d", orders)
	}
	var lines int64
	env.db.Model(&models.CartItem{}).Count(&lines)
	if lines != 2 {
		t.Fatalf("cart must be intact, got %d lines", lines)
	}
}

func TestPlaceOrderUnknownVariant(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "variant@atlas.ma")
	product := env.createProduct(t, "cap", "80.00", true)
	env.createVariant(t, product.ID, "M", constants.ColorBlack, 4)
	// 绕过加购预检直接写入不存在的规格
	cart := models.ShoppingCart{UserID: user.ID}
	env.db.Create(&cart)
	env.db.Create(&models.CartItem{CartID: cart.ID, ProductID: product.ID, Size: "XXL", Color: constants.ColorBlack, Quantity: 1})

	_, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "OUJDA", ""))
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("want ErrVariantNotFound got %v", err)
	}
}

func TestPlaceOrderNoVariantUsesInStockFlag(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "flag@atlas.ma")
	product := env.createProduct(t, "poster", "20.00", true)
	env.addToCart(t, user.ID, product.ID, "", constants.ColorNone, 1)
	if err := env.db.Model(product).Update("in_stock", false).Error; err != nil {
		t.Fatalf("flip in_stock failed: %v", err)
	}

	_, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "SAFI", ""))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}
}

func TestPlaceOrderAdmissionRejected(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "busy@atlas.ma")
	for i := 0; i < 3; i++ {
		env.db.Create(&models.Order{
			OrderNo:         "ORD-BUSY-" + string(rune('A'+i)),
			UserID:          user.ID,
			ShippingAddress: "x",
			ShippingCity:    "FES",
			ShippingPhone:   "0600000000",
			Status:          constants.OrderStatusProcessing,
			PaymentMethod:   constants.PaymentMethodCOD,
			CreatedAt:       time.Now().AddDate(0, 0, -2),
		})
	}
	product := env.createProduct(t, "busy", "10.00", true)
	env.addToCart(t, user.ID, product.ID, "", "", 1)

	_, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "FES", ""))
	if !errors.Is(err, ErrTooManyActiveOrders) {
		t.Fatalf("want ErrTooManyActiveOrders got %v", err)
	}
}

func TestPlaceOrderIgnoresInvalidCoupons(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "owner@atlas.ma")
	other := env.createUser(t, "other@atlas.ma")
	product := env.createProduct(t, "bag", "100.00", true)
	otherID := other.ID
	env.createCoupon(t, "NOTMINE", 50, "0", &otherID)
	env.addToCart(t, user.ID, product.ID, "", "", 1)

	order, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "RABAT", "NOTMINE"))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.CouponID != nil || order.TotalAmount.String() != "130.00" {
		t.Fatalf("foreign coupon must be ignored, got coupon=%v total=%s", order.CouponID, order.TotalAmount.String())
	}

	env.addToCart(t, user.ID, product.ID, "", "", 1)
	order, err = env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "RABAT", "DOES-NOT-EXIST"))
	if err != nil || order.CouponID != nil {
		t.Fatalf("unknown coupon must be ignored, err=%v", err)
	}
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "last", "100.00", true)
	variant := env.createVariant(t, product.ID, "M", constants.ColorBlack, 1)
	users := []*models.User{env.createUser(t, "c1@atlas.ma"), env.createUser(t, "c2@atlas.ma")}
	for _, u := range users {
		env.addToCart(t, u.ID, product.ID, "M", constants.ColorBlack, 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = env.checkout.PlaceOrder(context.Background(), placeOrderInput(userID, "FES", ""))
		}(i, u.ID)
	}
	wg.Wait()

	var succeeded, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || outOfStock != 1 {
		t.Fatalf("want one success and one stock failure, got %d/%d", succeeded, outOfStock)
	}
	if got := env.variantQuantity(t, variant.ID); got != 0 {
		t.Fatalf("variant quantity want 0 got %d", got)
	}
}

func TestConcurrentCheckoutSharedCouponAppliedOnce(t *testing.T) {
	env := setupServiceTest(t)
	product := env.createProduct(t, "shared", "100.00", true)
	env.createVariant(t, product.ID, "", constants.ColorNone, 10)
	env.createCoupon(t, "ONCE", 10, "0", nil)
	users := []*models.User{env.createUser(t, "s1@atlas.ma"), env.createUser(t, "s2@atlas.ma"), env.createUser(t, "s3@atlas.ma")}
	for _, u := range users {
		env.addToCart(t, u.ID, product.ID, "", "", 1)
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			if _, err := env.checkout.PlaceOrder(context.Background(), placeOrderInput(userID, "FES", "ONCE")); err != nil && !errors.Is(err, ErrCouponAlreadyUsed) {
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	var discounted int64
	env.db.Model(&models.Order{}).Where("coupon_id IS NOT NULL").Count(&discounted)
	if discounted != 1 {
		t.Fatalf("coupon should be applied exactly once, got %d", discounted)
	}
}

func TestSameUserConcurrentCheckoutSingleOrder(t *testing.T) {
	env := setupServiceTest(t)
	user := env.createUser(t, "tabs@atlas.ma")
	product := env.createProduct(t, "tabs", "40.00", true)
	env.addToCart(t, user.ID, product.ID, "", "", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.checkout.PlaceOrder(context.Background(), placeOrderInput(user.ID, "FES", ""))
		}(i)
	}
	wg.Wait()

	var orders int64
	env.db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orders)
	if orders != 1 {
		t.Fatalf("want a single order, got %d (errs=%v)", orders, errs)
	}
	emptyCart := 0
	for _, err := range errs {
		if errors.Is(err, ErrEmptyCart) {
			emptyCart++
		}
	}
	if emptyCart != 1 {
		t.Fatalf("second checkout should see an empty cart, errs=%v", errs)
	}
}

func TestCheckoutOutcome(t *testing.T) {
	cases := map[error]string{
		ErrEmptyCart:                             "empty_cart",
		&StockError{Err: ErrInsufficientStock}:   "stock",
		fmt.Errorf("wrap: %w", ErrCouponExpired): "coupon",
		ErrTooManyActiveOrders:                   "too_many_active_orders",
		newValidationError(errors.New("bad")):    "invalid_input",
		ErrShippingCityInvalid:                   "invalid_input",
		ErrPaymentMethodInvalid:                  "invalid_input",
		errors.New("boom"):                       "error",
	}
	for err, want := range cases {
		if got := checkoutOutcome(err); got != want {
			t.Fatalf("%v: want %s got %s", err, want, got)
		}
	}
}
