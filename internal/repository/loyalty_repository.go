package repository

import (
	"errors"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoyaltyRepository 积分档案与流水数据访问接口
type LoyaltyRepository interface {
	GetProfile(userID uint) (*models.LoyaltyProfile, error)
	GetOrCreateProfile(userID uint) (*models.LoyaltyProfile, error)
	GetOrCreateProfileForUpdate(userID uint) (*models.LoyaltyProfile, error)
	UpdateProfile(profile *models.LoyaltyProfile) error
	AppendHistory(history *models.LoyaltyHistory) error
	HasEarnForOrder(profileID uint, orderNo string) (bool, error)
	ListHistory(profileID uint, limit int) ([]models.LoyaltyHistory, error)
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// GormLoyaltyRepository GORM 实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建积分仓库
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// GetProfile 获取积分档案，不存在返回 nil
func (r *GormLoyaltyRepository) GetProfile(userID uint) (*models.LoyaltyProfile, error) {
	var profile models.LoyaltyProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetOrCreateProfile 获取积分档案，不存在时按铜卡创建，不加锁
func (r *GormLoyaltyRepository) GetOrCreateProfile(userID uint) (*models.LoyaltyProfile, error) {
	if err := r.seedProfile(userID); err != nil {
		return nil, err
	}
	var profile models.LoyaltyProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOrCreateProfileForUpdate 获取并锁定积分档案，不存在时按铜卡创建
func (r *GormLoyaltyRepository) GetOrCreateProfileForUpdate(userID uint) (*models.LoyaltyProfile, error) {
	if err := r.seedProfile(userID); err != nil {
		return nil, err
	}
	var profile models.LoyaltyProfile
	if err := forUpdate(r.db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *GormLoyaltyRepository) seedProfile(userID uint) error {
	seed := models.LoyaltyProfile{UserID: userID, Tier: constants.LoyaltyTierBronze}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
}

// UpdateProfile 保存积分余额、累计积分与等级
func (r *GormLoyaltyRepository) UpdateProfile(profile *models.LoyaltyProfile) error {
	if profile == nil {
		return nil
	}
	profile.UpdatedAt = time.Now()
	return r.db.Model(&models.LoyaltyProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"points":                profile.Points,
		"total_lifetime_points": profile.TotalLifetimePoints,
		"tier":                  profile.Tier,
		"updated_at":            profile.UpdatedAt,
	}).Error
}

// AppendHistory 追加积分流水
func (r *GormLoyaltyRepository) AppendHistory(history *models.LoyaltyHistory) error {
	return r.db.Create(history).Error
}

// HasEarnForOrder 订单是否已发放过积分
func (r *GormLoyaltyRepository) HasEarnForOrder(profileID uint, orderNo string) (bool, error) {
	if orderNo == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.LoyaltyHistory{}).
		Where("profile_id = ? AND type = ? AND order_no = ?", profileID, constants.LoyaltyHistoryEarn, orderNo).
		Count(&count).Error
	return count > 0, err
}

// ListHistory 最近的积分流水（倒序）
func (r *GormLoyaltyRepository) ListHistory(profileID uint, limit int) ([]models.LoyaltyHistory, error) {
	var rows []models.LoyaltyHistory
	query := r.db.Where("profile_id = ?", profileID).Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
