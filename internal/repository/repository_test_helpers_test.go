package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/atlas-shop/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:    "Linen Shirt " + slug,
		Slug:     slug,
		SKU:      "SKU-" + slug,
		Price:    models.MustMoney(price),
		InStock:  true,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestVariant(t *testing.T, db *gorm.DB, productID uint, size, color string, qty int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{ProductID: productID, Size: size, Color: color, Quantity: qty}
	if err := db.Create(variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}
