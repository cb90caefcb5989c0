package repository

import (
	"testing"
	"time"

	"github.com/atlas-shop/internal/models"
)

func TestCouponMarkUsedOnlyOnce(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCouponRepository(db)
	now := time.Now()
	coupon := &models.Coupon{
		Code:               "SPRING10",
		DiscountPercentage: 10,
		ValidFrom:          now.Add(-time.Hour),
		ValidTo:            now.Add(time.Hour),
		Active:             true,
		Source:             models.CouponSourceAdmin,
	}
	if err := repo.Create(coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	first, err := repo.MarkUsed(coupon.ID, now)
	if err != nil || !first {
		t.Fatalf("first mark used want true, got %v err=%v", first, err)
	}
	second, err := repo.MarkUsed(coupon.ID, now)
	if err != nil {
		t.Fatalf("second mark used failed: %v", err)
	}
	if second {
		t.Fatalf("second mark used should report no rows affected")
	}

	loaded, err := repo.GetByCodeForUpdate(" SPRING10 ")
	if err != nil {
		t.Fatalf("get coupon failed: %v", err)
	}
	if loaded == nil || !loaded.IsUsed || loaded.UsedAt == nil {
		t.Fatalf("coupon should be used, got %+v", loaded)
	}
}

func TestCouponListByOwner(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewCouponRepository(db)
	owner := uint(7)
	now := time.Now()
	for _, code := range []string{"LOYALTY-A", "LOYALTY-B"} {
		if err := repo.Create(&models.Coupon{
			Code:                code,
			FixedDiscountAmount: models.MustMoney("10.00"),
			ValidFrom:           now,
			ValidTo:             now.AddDate(0, 0, 90),
			Active:              true,
			OwnerID:             &owner,
			Source:              models.CouponSourceLoyalty,
		}); err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}
	if err := repo.Create(&models.Coupon{Code: "PUBLIC", ValidFrom: now, ValidTo: now, Active: true}); err != nil {
		t.Fatalf("create public coupon failed: %v", err)
	}

	rows, err := repo.ListByOwner(owner)
	if err != nil {
		t.Fatalf("list by owner failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 owned coupons got %d", len(rows))
	}
}
