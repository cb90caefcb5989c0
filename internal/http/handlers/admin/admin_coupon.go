package admin

import (
	"errors"
	"time"

	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Code                string       `json:"code" binding:"required"`
	DiscountPercentage  int          `json:"discount_percentage"`
	FixedDiscountAmount models.Money `json:"fixed_discount_amount"`
	ValidFrom           string       `json:"valid_from" binding:"required"`
	ValidTo             string       `json:"valid_to" binding:"required"`
	OwnerID             *uint        `json:"owner_id"`
	IsActive            *bool        `json:"is_active"`
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil || validFrom == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	validTo, err := parseTimeNullable(req.ValidTo)
	if err != nil || validTo == nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Code:                req.Code,
		DiscountPercentage:  req.DiscountPercentage,
		FixedDiscountAmount: req.FixedDiscountAmount,
		ValidFrom:           *validFrom,
		ValidTo:             *validTo,
		OwnerID:             req.OwnerID,
		IsActive:            req.IsActive,
	})
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			respondErrorWithData(c, response.CodeBadRequest, "error.validation", gin.H{"fields": validationErr.Fields})
		case errors.Is(err, service.ErrCouponInvalid):
			respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		case errors.Is(err, service.ErrCouponCodeExists):
			respondError(c, response.CodeBadRequest, "error.coupon_code_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.coupon_create_failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_coupon_created",
		"admin_id", c.GetUint("admin_id"),
		"coupon_id", coupon.ID,
		"code", coupon.Code,
	)
	response.Success(c, coupon)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
