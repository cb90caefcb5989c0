package repository

import (
	"strings"
	"time"

	"github.com/atlas-shop/internal/constants"
	"github.com/atlas-shop/internal/models"

	"gorm.io/gorm"
)

// UserRepository 顾客数据访问
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	CreateCustomer(user *models.User) error
	TouchLastLogin(id uint, at time.Time) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建顾客仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 按 ID 查询，不存在返回 nil
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.User](r.db, id)
}

// GetByEmail 按邮箱查询（忽略大小写）
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return firstOrNil[models.User](r.db.Where(caseInsensitiveEquals(r.db, "email"), email))
}

// ListByIDs 批量查询，用于后台订单列表补充顾客信息
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateCustomer 在同一事务内创建顾客、空购物车与铜卡积分档案
func (r *GormUserRepository) CreateCustomer(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ShoppingCart{UserID: user.ID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.LoyaltyProfile{UserID: user.ID, Tier: constants.LoyaltyTierBronze}).Error
	})
}

// TouchLastLogin 记录最后登录时间，不改动其他列
func (r *GormUserRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}
