package public

import (
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/http/response"
	"github.com/atlas-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// ShippingCityView 配送城市及运费
type ShippingCityView struct {
	Code        string `json:"code"`
	ShippingFee string `json:"shipping_fee"`
}

// GetShippingCities 获取支持配送的城市列表
func (h *Handler) GetShippingCities(c *gin.Context) {
	cities := make([]ShippingCityView, 0, len(constants.ShippingCities))
	for _, city := range constants.ShippingCities {
		cities = append(cities, ShippingCityView{
			Code:        city,
			ShippingFee: service.ShippingFee(h.Config.Checkout, city).String(),
		})
	}
	response.Success(c, cities)
}
