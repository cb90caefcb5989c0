package main

import (
	"errors"
	"time"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/models"

	"gorm.io/gorm"
)

type seedVariant struct {
	Size     string
	Color    string
	Quantity int
}

type seedProduct struct {
	Title    string
	Slug     string
	SKU      string
	Price    string
	OldPrice string
	Variants []seedVariant
}

var demoProducts = []seedProduct{
	{
		Title: "Linen Shirt",
		Slug:  "linen-shirt",
		SKU:   "LS-001",
		Price: "249.00",
		Variants: []seedVariant{
			{Size: "S", Color: constants.ColorWhite, Quantity: 12},
			{Size: "M", Color: constants.ColorWhite, Quantity: 20},
			{Size: "L", Color: constants.ColorBeige, Quantity: 8},
		},
	},
	{
		Title:    "Leather Sneakers",
		Slug:     "leather-sneakers",
		SKU:      "SN-042",
		Price:    "599.00",
		OldPrice: "749.00",
		Variants: []seedVariant{
			{Size: "41", Color: constants.ColorBlack, Quantity: 5},
			{Size: "42", Color: constants.ColorBlack, Quantity: 6},
			{Size: "43", Color: constants.ColorBrown, Quantity: 2},
		},
	},
	{
		Title: "Canvas Tote",
		Slug:  "canvas-tote",
		SKU:   "TT-007",
		Price: "89.90",
		Variants: []seedVariant{
			{Size: "", Color: constants.ColorNone, Quantity: 40},
		},
	},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	for _, item := range demoProducts {
		if err := seedCatalogProduct(models.DB, item); err != nil {
			stdLog.Printf("Failed to seed product %s: %v", item.Slug, err)
		}
	}
	if err := seedWelcomeCoupon(models.DB); err != nil {
		stdLog.Printf("Failed to seed coupon: %v", err)
	}
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to seed admin: %v", err)
	}
	logger.Infow("seed_completed", "products", len(demoProducts))
}

func seedCatalogProduct(db *gorm.DB, item seedProduct) error {
	var existing models.Product
	err := db.Where("slug = ?", item.Slug).First(&existing).Error
	if err == nil {
		logger.Infow("seed_product_exists", "slug", item.Slug)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	product := models.Product{
		Title:          item.Title,
		Slug:           item.Slug,
		SKU:            item.SKU,
		Price:          models.MustMoney(item.Price),
		Specifications: models.JSON{"material": "demo"},
		InStock:        true,
		IsActive:       true,
	}
	if item.OldPrice != "" {
		old := models.MustMoney(item.OldPrice)
		product.OldPrice = &old
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, v := range item.Variants {
			variant := models.ProductVariant{
				ProductID: product.ID,
				Size:      v.Size,
				Color:     v.Color,
				Quantity:  v.Quantity,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
		}
		logger.Infow("seed_product_created", "slug", item.Slug, "variants", len(item.Variants))
		return nil
	})
}

func seedWelcomeCoupon(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Coupon{}).Where("code = ?", "WELCOME10").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	now := time.Now()
	return db.Create(&models.Coupon{
		Code:               "WELCOME10",
		DiscountPercentage: 10,
		ValidFrom:          now,
		ValidTo:            now.AddDate(0, 3, 0),
		Active:             true,
		Source:             models.CouponSourceAdmin,
	}).Error
}
