package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db            *gorm.DB
	cart          *CartService
	checkout      *CheckoutService
	orders        *OrderService
	loyalty       *LoyaltyService
	coupons       *CouponService
	notifications *NotificationService
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	// sqlite 无行锁，单连接串行化事务
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return newServiceTestEnv(db)
}

// newServiceTestEnv 基于已迁移的数据库装配服务
func newServiceTestEnv(db *gorm.DB) *serviceTestEnv {
	models.DB = db
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	coupons := NewCouponService(couponRepo)
	notifications := NewNotificationService(notificationRepo)
	loyalty := NewLoyaltyService(config.LoyaltyConfig{}, loyaltyRepo, couponRepo)
	return &serviceTestEnv{
		db:            db,
		cart:          NewCartService(cartRepo, productRepo),
		checkout:      NewCheckoutService(config.CheckoutConfig{}, cartRepo, productRepo, orderRepo, NewInventoryService(productRepo), coupons, notifications, nil),
		orders:        NewOrderService(orderRepo, loyalty, notifications, nil),
		loyalty:       loyalty,
		coupons:       coupons,
		notifications: notifications,
	}
}

func (env *serviceTestEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Status: constants.UserStatusActive}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *serviceTestEnv) createProduct(t *testing.T, slug, price string, inStock bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:    "Product " + slug,
		Slug:     slug,
		SKU:      "SKU-" + slug,
		Price:    models.MustMoney(price),
		InStock:  true,
		IsActive: true,
	}
	if err := env.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if !inStock {
		if err := env.db.Model(product).Update("in_stock", false).Error; err != nil {
			t.Fatalf("mark product out of stock failed: %v", err)
		}
		product.InStock = false
	}
	return product
}

func (env *serviceTestEnv) createVariant(t *testing.T, productID uint, size, color string, qty int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{ProductID: productID, Size: size, Color: color, Quantity: qty}
	if err := env.db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func (env *serviceTestEnv) createCoupon(t *testing.T, code string, pct int, fixed string, owner *uint) *models.Coupon {
	t.Helper()
	now := time.Now()
	coupon := &models.Coupon{
		Code:                code,
		DiscountPercentage:  pct,
		FixedDiscountAmount: models.MustMoney(fixed),
		ValidFrom:           now.Add(-time.Hour),
		ValidTo:             now.Add(24 * time.Hour),
		Active:              true,
		OwnerID:             owner,
		Source:              models.CouponSourceAdmin,
	}
	if err := env.db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func (env *serviceTestEnv) addToCart(t *testing.T, userID, productID uint, size, color string, qty int) {
	t.Helper()
	if _, err := env.cart.AddItem(AddCartItemInput{UserID: userID, ProductID: productID, Size: size, Color: color, Quantity: qty}); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
}

func (env *serviceTestEnv) variantQuantity(t *testing.T, id uint) int {
	t.Helper()
	var variant models.ProductVariant
	if err := env.db.First(&variant, id).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	return variant.Quantity
}

func placeOrderInput(userID uint, city, coupon string) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          userID,
		ShippingAddress: "12 Rue des Orangers",
		ShippingCity:    city,
		ShippingPhone:   "+212600000000",
		PaymentMethod:   constants.PaymentMethodCOD,
		CouponCode:      coupon,
	}
}
