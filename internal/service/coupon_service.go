package service

import (
	"strings"
	"time"

	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券校验与核销
type CouponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// IsValid 校验优惠券是否可被该用户在 now 时刻使用
func (s *CouponService) IsValid(coupon *models.Coupon, userID uint, now time.Time) error {
	if coupon == nil {
		return ErrCouponNotFound
	}
	if !coupon.Active {
		return ErrCouponInactive
	}
	if now.Before(coupon.ValidFrom) {
		return ErrCouponNotStarted
	}
	if now.After(coupon.ValidTo) {
		return ErrCouponExpired
	}
	if coupon.IsUsed {
		return ErrCouponUsed
	}
	if coupon.OwnerID != nil && *coupon.OwnerID != userID {
		return ErrCouponOwnerMismatch
	}
	return nil
}

// Discount 计算优惠金额：固定金额优先，否则按百分比，结果限制在 [0, subtotal]
func (s *CouponService) Discount(coupon *models.Coupon, subtotal models.Money) models.Money {
	return CouponDiscount(coupon, subtotal)
}

// CouponDiscount 优惠金额计算
func CouponDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	if coupon == nil || !subtotal.IsPositive() {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	var discount decimal.Decimal
	if coupon.FixedDiscountAmount.IsPositive() {
		discount = coupon.FixedDiscountAmount.Decimal
	} else {
		pct := coupon.DiscountPercentage
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discount = subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	return models.NewMoneyFromDecimal(discount)
}

// ResolveForCheckout 在下单事务内锁定并校验优惠券；无效券返回 nil 并记录原因，不中断下单
func (s *CouponService) ResolveForCheckout(tx *gorm.DB, code string, userID uint, now time.Time) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	coupon, err := s.couponRepo.WithTx(tx).GetByCodeForUpdate(code)
	if err != nil {
		return nil, err
	}
	if err := s.IsValid(coupon, userID, now); err != nil {
		logger.Infow("checkout_coupon_ignored",
			"user_id", userID,
			"coupon_code", code,
			"reason", err.Error(),
		)
		return nil, nil
	}
	return coupon, nil
}

// Consume 条件核销；并发下单已占用时返回 ErrCouponAlreadyUsed
func (s *CouponService) Consume(tx *gorm.DB, coupon *models.Coupon, now time.Time) error {
	if coupon == nil {
		return nil
	}
	ok, err := s.couponRepo.WithTx(tx).MarkUsed(coupon.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponAlreadyUsed
	}
	coupon.IsUsed = true
	coupon.UsedAt = &now
	return nil
}

// ListOwned 用户名下的优惠券
func (s *CouponService) ListOwned(userID uint) ([]models.Coupon, error) {
	if userID == 0 {
		return []models.Coupon{}, nil
	}
	return s.couponRepo.ListByOwner(userID)
}
