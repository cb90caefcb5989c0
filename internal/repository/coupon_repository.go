package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/atlas-shop/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, error)
	GetByCodeForUpdate(code string) (*models.Coupon, error)
	MarkUsed(id uint, usedAt time.Time) (bool, error)
	Create(coupon *models.Coupon) error
	ListByOwner(ownerID uint) ([]models.Coupon, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// GetByCode 根据优惠码获取
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	return r.getByCode(r.db, code)
}

// GetByCodeForUpdate 加锁读取优惠券
func (r *GormCouponRepository) GetByCodeForUpdate(code string) (*models.Coupon, error) {
	return r.getByCode(forUpdate(r.db), code)
}

func (r *GormCouponRepository) getByCode(query *gorm.DB, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var coupon models.Coupon
	if err := query.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// MarkUsed 条件更新为已使用，仅当 is_used = false 时生效；返回是否抢占成功
func (r *GormCouponRepository) MarkUsed(id uint, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.Coupon{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_at":    usedAt,
			"updated_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Create(coupon).Error
}

// ListByOwner 获取用户名下的优惠券
func (r *GormCouponRepository) ListByOwner(ownerID uint) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.Where("owner_id = ?", ownerID).Order("id desc").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}
