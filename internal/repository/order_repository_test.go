package repository

import (
	"testing"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

func createTestOrder(t *testing.T, repo *GormOrderRepository, orderNo string, userID uint, status string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:         orderNo,
		UserID:          userID,
		ShippingAddress: "12 Rue Test",
		ShippingCity:    "RABAT",
		ShippingPhone:   "0600000000",
		Status:          status,
		PaymentMethod:   constants.PaymentMethodCOD,
		CreatedAt:       createdAt,
	}
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestCountActiveSince(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	now := time.Now()
	createTestOrder(t, repo, "ORD-1", 1, constants.OrderStatusPending, now)
	createTestOrder(t, repo, "ORD-2", 1, constants.OrderStatusShipped, now.AddDate(0, 0, -3))
	createTestOrder(t, repo, "ORD-3", 1, constants.OrderStatusDelivered, now)
	createTestOrder(t, repo, "ORD-4", 1, constants.OrderStatusProcessing, now.AddDate(0, 0, -45))
	createTestOrder(t, repo, "ORD-5", 2, constants.OrderStatusPending, now)

	count, err := repo.CountActiveSince(1, constants.ActiveOrderStatuses, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("active count want 2 got %d", count)
	}
}

func TestOrderItemsAndStatusLogs(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, "ORD-ITEMS", 3, constants.OrderStatusPending, time.Now())

	items := []models.OrderItem{
		{OrderID: order.ID, ProductName: "Shirt", ProductPrice: models.MustMoney("100.00"), Quantity: 2},
		{OrderID: order.ID, ProductName: "Scarf", ProductPrice: models.MustMoney("40.00"), Quantity: 1},
	}
	if err := repo.CreateItems(items); err != nil {
		t.Fatalf("create items failed: %v", err)
	}
	if err := repo.UpdateStatus(order.ID, constants.OrderStatusShipped, map[string]interface{}{"tracking_number": "TRK-1"}); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if err := repo.CreateStatusLog(&models.OrderStatusLog{
		OrderID:    order.ID,
		FromStatus: constants.OrderStatusPending,
		ToStatus:   constants.OrderStatusShipped,
	}); err != nil {
		t.Fatalf("create status log failed: %v", err)
	}

	loaded, err := repo.GetByOrderNoAndUser("ORD-ITEMS", 3)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if loaded == nil || len(loaded.Items) != 2 {
		t.Fatalf("order should carry 2 items, got %+v", loaded)
	}
	if loaded.Status != constants.OrderStatusShipped || loaded.TrackingNumber != "TRK-1" {
		t.Fatalf("unexpected status/tracking: %s/%s", loaded.Status, loaded.TrackingNumber)
	}
	other, err := repo.GetByOrderNoAndUser("ORD-ITEMS", 4)
	if err != nil {
		t.Fatalf("get order for other user failed: %v", err)
	}
	if other != nil {
		t.Fatalf("order must not be visible to another user")
	}
	logs, err := repo.ListStatusLogs(order.ID)
	if err != nil || len(logs) != 1 {
		t.Fatalf("want 1 status log got %d err=%v", len(logs), err)
	}
}
