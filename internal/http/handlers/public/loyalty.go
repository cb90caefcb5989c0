package public

import (
	"github.com/atlas-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ConvertPointsRequest 积分兑换请求
type ConvertPointsRequest struct {
	Points int `json:"points" binding:"required"`
}

// GetLoyalty 积分面板
func (h *Handler) GetLoyalty(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.LoyaltyService.Dashboard(c.Request.Context(), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.loyalty_fetch_failed", err)
		return
	}
	response.Success(c, dashboard)
}

// ConvertPoints 积分兑换优惠券
func (h *Handler) ConvertPoints(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ConvertPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.LoyaltyService.ConvertPoints(c.Request.Context(), uid, req.Points)
	if err != nil {
		respondWithMappedError(c, err, loyaltyConvertErrorRules, response.CodeInternal, "error.loyalty_convert_failed")
		return
	}
	response.Success(c, result)
}
