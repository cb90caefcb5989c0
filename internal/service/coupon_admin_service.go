package service

import (
	"strings"
	"time"

	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo repository.CouponRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Code                string
	DiscountPercentage  int
	FixedDiscountAmount models.Money
	ValidFrom           time.Time
	ValidTo             time.Time
	OwnerID             *uint
	IsActive            *bool
}

// Validate 校验输入
func (in CreateCouponInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Code, validation.Required, validation.Length(3, 50), is.Alphanumeric),
		validation.Field(&in.DiscountPercentage, validation.Min(0), validation.Max(100)),
		validation.Field(&in.ValidFrom, validation.Required),
		validation.Field(&in.ValidTo, validation.Required, validation.Min(in.ValidFrom)),
	)
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := input.Validate(); err != nil {
		return nil, newValidationError(err)
	}
	if input.FixedDiscountAmount.IsNegative() {
		return nil, newValidationError(validation.Errors{"fixed_discount_amount": validation.NewError("validation_min", "must not be negative")})
	}
	if input.DiscountPercentage == 0 && !input.FixedDiscountAmount.IsPositive() {
		return nil, ErrCouponInvalid
	}
	existing, err := s.repo.GetByCode(input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponCodeExists
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	coupon := &models.Coupon{
		Code:                input.Code,
		DiscountPercentage:  input.DiscountPercentage,
		FixedDiscountAmount: input.FixedDiscountAmount,
		ValidFrom:           input.ValidFrom,
		ValidTo:             input.ValidTo,
		Active:              active,
		OwnerID:             input.OwnerID,
		Source:              models.CouponSourceAdmin,
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}
