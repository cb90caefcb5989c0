package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-shop/internal/cache"
	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/logger"
	"github.com/atlas-shop/internal/metrics"
	"github.com/atlas-shop/internal/models"
	"github.com/atlas-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dashboardHistoryLimit = 20

// LoyaltyService 积分引擎：积分档案只经由此服务修改
type LoyaltyService struct {
	cfg         config.LoyaltyConfig
	loyaltyRepo repository.LoyaltyRepository
	couponRepo  repository.CouponRepository
}

// NewLoyaltyService 创建积分服务
func NewLoyaltyService(cfg config.LoyaltyConfig, loyaltyRepo repository.LoyaltyRepository, couponRepo repository.CouponRepository) *LoyaltyService {
	return &LoyaltyService{
		cfg:         cfg,
		loyaltyRepo: loyaltyRepo,
		couponRepo:  couponRepo,
	}
}

// LoyaltyDashboard 积分面板
type LoyaltyDashboard struct {
	Profile models.LoyaltyProfile   `json:"profile"`
	History []models.LoyaltyHistory `json:"history"`
}

// ConvertPointsResult 积分兑换结果
type ConvertPointsResult struct {
	Profile *models.LoyaltyProfile `json:"profile"`
	Coupon  *models.Coupon         `json:"coupon"`
}

func (s *LoyaltyService) amountPerPoint() decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(s.cfg.AmountPerPoint)); err == nil && d.IsPositive() {
		return d
	}
	return decimal.NewFromInt(10)
}

func (s *LoyaltyService) goldMultiplier() decimal.Decimal {
	if s.cfg.GoldMultiplier > 0 {
		return decimal.NewFromFloat(s.cfg.GoldMultiplier)
	}
	return decimal.NewFromFloat(1.5)
}

func (s *LoyaltyService) pointValue() decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(s.cfg.PointValue)); err == nil && d.IsPositive() {
		return d
	}
	return decimal.RequireFromString("0.10")
}

func (s *LoyaltyService) minConvertPoints() int {
	if s.cfg.MinConvertPoints > 0 {
		return s.cfg.MinConvertPoints
	}
	return 100
}

func (s *LoyaltyService) rewardValidDays() int {
	if s.cfg.RewardValidDays > 0 {
		return s.cfg.RewardValidDays
	}
	return 90
}

// TierFor 根据累计积分定级
func (s *LoyaltyService) TierFor(lifetime int) string {
	gold := s.cfg.GoldThreshold
	if gold <= 0 {
		gold = 2000
	}
	silver := s.cfg.SilverThreshold
	if silver <= 0 {
		silver = 500
	}
	switch {
	case lifetime >= gold:
		return constants.LoyaltyTierGold
	case lifetime >= silver:
		return constants.LoyaltyTierSilver
	default:
		return constants.LoyaltyTierBronze
	}
}

// PointsForOrder 计算订单可得积分：(实付 - 运费) 每满 10 积 1 分，金卡再乘倍率向下取整
func (s *LoyaltyService) PointsForOrder(order *models.Order, tier string) int {
	if order == nil {
		return 0
	}
	net := order.TotalAmount.Sub(order.ShippingFee.Decimal)
	if !net.IsPositive() {
		return 0
	}
	earned := net.Div(s.amountPerPoint()).Floor()
	if tier == constants.LoyaltyTierGold {
		earned = earned.Mul(s.goldMultiplier()).Floor()
	}
	return int(earned.IntPart())
}

// AwardForOrder 订单签收发放积分，必须在订单状态变更事务内调用
func (s *LoyaltyService) AwardForOrder(tx *gorm.DB, order *models.Order) (int, error) {
	if order == nil || order.UserID == 0 {
		return 0, nil
	}
	repo := s.loyaltyRepo.WithTx(tx)
	profile, err := repo.GetOrCreateProfileForUpdate(order.UserID)
	if err != nil {
		return 0, err
	}
	// 退货后再次签收不重复发放
	awarded, err := repo.HasEarnForOrder(profile.ID, order.OrderNo)
	if err != nil {
		return 0, err
	}
	if awarded {
		return 0, nil
	}
	earned := s.PointsForOrder(order, profile.Tier)
	if earned <= 0 {
		return 0, nil
	}

	before := profile.Points
	profile.Points += earned
	profile.TotalLifetimePoints += earned
	profile.Tier = s.TierFor(profile.TotalLifetimePoints)
	if err := repo.UpdateProfile(profile); err != nil {
		return 0, err
	}
	if err := repo.AppendHistory(&models.LoyaltyHistory{
		ProfileID:     profile.ID,
		Type:          constants.LoyaltyHistoryEarn,
		Points:        earned,
		BalanceBefore: before,
		BalanceAfter:  profile.Points,
		Description:   fmt.Sprintf("Points earned for order %s", order.OrderNo),
		OrderNo:       order.OrderNo,
	}); err != nil {
		return 0, err
	}
	metrics.AddLoyaltyPoints("earn", earned)
	logger.Infow("loyalty_points_awarded",
		"user_id", order.UserID,
		"order_no", order.OrderNo,
		"points", earned,
		"tier", profile.Tier,
	)
	return earned, nil
}

// ConvertPoints 积分兑换为专属固定金额优惠券
func (s *LoyaltyService) ConvertPoints(ctx context.Context, userID uint, points int) (*ConvertPointsResult, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	if points < s.minConvertPoints() {
		return nil, ErrPointsBelowMinimum
	}

	var result ConvertPointsResult
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.loyaltyRepo.WithTx(tx)
		profile, err := repo.GetOrCreateProfileForUpdate(userID)
		if err != nil {
			return err
		}
		if points > profile.Points {
			return ErrInsufficientPoints
		}

		now := time.Now()
		owner := userID
		amount := models.NewMoneyFromDecimal(s.pointValue().Mul(decimal.NewFromInt(int64(points))))
		coupon := &models.Coupon{
			Code:                generateRewardCouponCode(),
			FixedDiscountAmount: amount,
			ValidFrom:           now,
			ValidTo:             now.AddDate(0, 0, s.rewardValidDays()),
			Active:              true,
			OwnerID:             &owner,
			Source:              models.CouponSourceLoyalty,
		}
		if err := s.couponRepo.WithTx(tx).Create(coupon); err != nil {
			return err
		}

		before := profile.Points
		profile.Points -= points
		if err := repo.UpdateProfile(profile); err != nil {
			return err
		}
		if err := repo.AppendHistory(&models.LoyaltyHistory{
			ProfileID:     profile.ID,
			Type:          constants.LoyaltyHistorySpend,
			Points:        -points,
			BalanceBefore: before,
			BalanceAfter:  profile.Points,
			Description:   fmt.Sprintf("Converted to coupon %s worth %s", coupon.Code, amount.String()),
		}); err != nil {
			return err
		}
		result.Profile = profile
		result.Coupon = coupon
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.InvalidateDashboard(ctx, userID)
	metrics.AddLoyaltyPoints("spend", points)
	logger.Infow("loyalty_points_converted",
		"user_id", userID,
		"points", points,
		"coupon_code", result.Coupon.Code,
		"amount", result.Coupon.FixedDiscountAmount.String(),
	)
	return &result, nil
}

// Dashboard 积分面板（档案不存在时创建），优先读缓存
func (s *LoyaltyService) Dashboard(ctx context.Context, userID uint) (*LoyaltyDashboard, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	var cached LoyaltyDashboard
	if hit, err := cache.GetLoyaltyDashboard(ctx, userID, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		logger.Warnw("loyalty_dashboard_cache_read_failed", "user_id", userID, "error", err)
	}

	repo := s.loyaltyRepo.WithTx(models.DB.WithContext(ctx))
	profile, err := repo.GetOrCreateProfile(userID)
	if err != nil {
		return nil, err
	}
	history, err := repo.ListHistory(profile.ID, dashboardHistoryLimit)
	if err != nil {
		return nil, err
	}
	dashboard := LoyaltyDashboard{Profile: *profile, History: history}

	ttl := time.Duration(s.cfg.DashboardCacheSecs) * time.Second
	if err := cache.SetLoyaltyDashboard(ctx, userID, dashboard, ttl); err != nil {
		logger.Warnw("loyalty_dashboard_cache_write_failed", "user_id", userID, "error", err)
	}
	return &dashboard, nil
}

// InvalidateDashboard 积分变动后清理缓存
func (s *LoyaltyService) InvalidateDashboard(ctx context.Context, userID uint) {
	if err := cache.DelLoyaltyDashboard(ctx, userID); err != nil {
		logger.Warnw("loyalty_dashboard_cache_invalidate_failed", "user_id", userID, "error", err)
	}
}

func generateRewardCouponCode() string {
	return "LOYALTY" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
