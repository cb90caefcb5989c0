package service

import (
	"errors"
	"testing"
	"time"

	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"
)

func TestCouponIsValid(t *testing.T) {
	svc := NewCouponService(nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	owner := uint(7)
	base := func() *models.Coupon {
		return &models.Coupon{
			Code:      "SPRING",
			ValidFrom: now.Add(-time.Hour),
			ValidTo:   now.Add(time.Hour),
			Active:    true,
		}
	}

	cases := []struct {
		name   string
		mutate func(c *models.Coupon)
		user   uint
		want   error
	}{
		{name: "valid", mutate: func(c *models.Coupon) {}, user: 1},
		{name: "inactive", mutate: func(c *models.Coupon) { c.Active = false }, user: 1, want: ErrCouponInactive},
		{name: "not started", mutate: func(c *models.Coupon) { c.ValidFrom = now.Add(time.Minute) }, user: 1, want: ErrCouponNotStarted},
		{name: "expired", mutate: func(c *models.Coupon) { c.ValidTo = now.Add(-time.Minute) }, user: 1, want: ErrCouponExpired},
		{name: "used", mutate: func(c *models.Coupon) { c.IsUsed = true }, user: 1, want: ErrCouponUsed},
		{name: "owner mismatch", mutate: func(c *models.Coupon) { c.OwnerID = &owner }, user: 1, want: ErrCouponOwnerMismatch},
		{name: "owner match", mutate: func(c *models.Coupon) { c.OwnerID = &owner }, user: 7},
	}
	for _, tc := range cases {
		coupon := base()
		tc.mutate(coupon)
		err := svc.IsValid(coupon, tc.user, now)
		if !errors.Is(err, tc.want) && !(tc.want == nil && err == nil) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
	if err := svc.IsValid(nil, 1, now); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("nil coupon: want ErrCouponNotFound got %v", err)
	}
}

func TestCouponDiscount(t *testing.T) {
	subtotal := models.MustMoney("200.00")
	cases := []struct {
		name   string
		coupon *models.Coupon
		want   string
	}{
		{name: "none", coupon: nil, want: "0.00"},
		{name: "percent", coupon: &models.Coupon{DiscountPercentage: 15}, want: "30.00"},
		{name: "fixed wins over percent", coupon: &models.Coupon{DiscountPercentage: 50, FixedDiscountAmount: models.MustMoney("25.00")}, want: "25.00"},
		{name: "fixed clamped", coupon: &models.Coupon{FixedDiscountAmount: models.MustMoney("999.00")}, want: "200.00"},
		{name: "percent over 100 clamped", coupon: &models.Coupon{DiscountPercentage: 150}, want: "200.00"},
		{name: "zero", coupon: &models.Coupon{}, want: "0.00"},
	}
	for _, tc := range cases {
		if got := CouponDiscount(tc.coupon, subtotal).String(); got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}
	if got := CouponDiscount(&models.Coupon{DiscountPercentage: 10}, models.MustMoney("0")).String(); got != "0.00" {
		t.Fatalf("zero subtotal must discount 0, got %s", got)
	}
}

func TestCouponAdminCreate(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewCouponAdminService(repository.NewCouponRepository(env.db))
	now := time.Now()
	inactive := false

	coupon, err := svc.Create(CreateCouponInput{
		Code:               "summer26",
		DiscountPercentage: 20,
		ValidFrom:          now,
		ValidTo:            now.Add(48 * time.Hour),
		IsActive:           &inactive,
	})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if coupon.Code != "SUMMER26" {
		t.Fatalf("code should be upper-cased, got %s", coupon.Code)
	}
	var stored models.Coupon
	env.db.First(&stored, coupon.ID)
	if stored.Active {
		t.Fatalf("inactive flag must persist")
	}

	if _, err := svc.Create(CreateCouponInput{Code: "SUMMER26", DiscountPercentage: 5, ValidFrom: now, ValidTo: now.Add(time.Hour)}); !errors.Is(err, ErrCouponCodeExists) {
		t.Fatalf("want ErrCouponCodeExists got %v", err)
	}
	if _, err := svc.Create(CreateCouponInput{Code: "NOTHING", ValidFrom: now, ValidTo: now.Add(time.Hour)}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("want ErrCouponInvalid got %v", err)
	}
	if _, err := svc.Create(CreateCouponInput{Code: "BAD-CODE!", DiscountPercentage: 5, ValidFrom: now, ValidTo: now.Add(time.Hour)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation got %v", err)
	}
	if _, err := svc.Create(CreateCouponInput{Code: "BACKWARDS", DiscountPercentage: 5, ValidFrom: now, ValidTo: now.Add(-time.Hour)}); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation for inverted window got %v", err)
	}
}
