package cache

import (
	"context"
	"fmt"
	"time"
)

func loyaltyDashboardKey(userID uint) string {
	return fmt.Sprintf("loyalty:dashboard:%d", userID)
}

// GetLoyaltyDashboard 读取积分面板缓存
func GetLoyaltyDashboard(ctx context.Context, userID uint, dest interface{}) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return GetJSON(ctx, loyaltyDashboardKey(userID), dest)
}

// SetLoyaltyDashboard 写入积分面板缓存
func SetLoyaltyDashboard(ctx context.Context, userID uint, value interface{}, ttl time.Duration) error {
	if userID == 0 || ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, loyaltyDashboardKey(userID), value, ttl)
}

// DelLoyaltyDashboard 积分变动后失效面板缓存
func DelLoyaltyDashboard(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, loyaltyDashboardKey(userID))
}
