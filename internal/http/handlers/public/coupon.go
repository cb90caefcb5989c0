package public

import (
	"github.com/atlas-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyCoupons 我的优惠券（积分兑换等专属券）
func (h *Handler) ListMyCoupons(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	coupons, err := h.CouponService.ListOwned(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.coupon_fetch_failed", err)
		return
	}
	response.Success(c, coupons)
}
