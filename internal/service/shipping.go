package service

import (
	"strings"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"
)

const (
	defaultDiscountedCity    = "CASABLANCA"
	defaultDiscountedCityFee = "10.00"
	defaultFlatShippingFee   = "30.00"
)

// ShippingFee 按收货城市计算运费
func ShippingFee(cfg config.CheckoutConfig, city string) models.Money {
	discounted := strings.ToUpper(strings.TrimSpace(cfg.DiscountedCity))
	if discounted == "" {
		discounted = defaultDiscountedCity
	}
	if strings.EqualFold(strings.TrimSpace(city), discounted) {
		return moneyOrDefault(cfg.DiscountedCityFee, defaultDiscountedCityFee)
	}
	return moneyOrDefault(cfg.FlatShippingFee, defaultFlatShippingFee)
}

// IsShippingCity 是否为支持配送的城市
func IsShippingCity(city string) bool {
	city = strings.ToUpper(strings.TrimSpace(city))
	for _, c := range constants.ShippingCities {
		if c == city {
			return true
		}
	}
	return false
}

func moneyOrDefault(raw, fallback string) models.Money {
	if m, err := models.ParseMoney(raw); err == nil && strings.TrimSpace(raw) != "" && !m.IsNegative() {
		return m
	}
	return models.MustMoney(fallback)
}
