package repository

import (
	"github.com/threaded-treasure/internal/models"

	"gorm.io/gorm"
)

// PromoCodeUsageRepository 优惠码使用记录数据访问接口
type PromoCodeUsageRepository interface {
	Create(usage *models.PromoCodeUsage) error
	CountByUser(promoCodeID, userID uint) (int64, error)
	ListByPromoCode(promoCodeID uint, page, pageSize int) ([]models.PromoCodeUsage, int64, error)
	WithTx(tx *gorm.DB) *GormPromoCodeUsageRepository
}

// GormPromoCodeUsageRepository GORM 实现
type GormPromoCodeUsageRepository struct {
	db *gorm.DB
}

// NewPromoCodeUsageRepository 创建优惠码使用记录仓库
func NewPromoCodeUsageRepository(db *gorm.DB) *GormPromoCodeUsageRepository {
	return &GormPromoCodeUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeUsageRepository) WithTx(tx *gorm.DB) *GormPromoCodeUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeUsageRepository{db: tx}
}

// Create 创建使用记录
func (r *GormPromoCodeUsageRepository) Create(usage *models.PromoCodeUsage) error {
	return r.db.Create(usage).Error
}

// CountByUser 统计某用户对某优惠码的使用次数
func (r *GormPromoCodeUsageRepository) CountByUser(promoCodeID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PromoCodeUsage{}).
		Where("promo_code_id = ? AND user_id = ?", promoCodeID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListByPromoCode 获取某优惠码的使用记录
func (r *GormPromoCodeUsageRepository) ListByPromoCode(promoCodeID uint, page, pageSize int) ([]models.PromoCodeUsage, int64, error) {
	query := r.db.Model(&models.PromoCodeUsage{}).Where("promo_code_id = ?", promoCodeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var usages []models.PromoCodeUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}
