package repository

import (
	"errors"

	"github.com/threaded-treasure/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository 商品评价数据访问接口
type ReviewRepository interface {
	GetByID(id uint) (*models.Review, error)
	GetByUserAndProduct(userID, productID uint) (*models.Review, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id uint) error
	ListApprovedByProduct(productID uint, page, pageSize int) ([]models.Review, int64, error)
	ListByUser(userID uint, page, pageSize int) ([]models.Review, int64, error)
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	RatingBuckets(productID uint) (map[int]int64, error)
	IncrementHelpfulCount(id uint) (int64, error)
	SetApproval(id uint, approved bool) (int64, error)
	WithTx(tx *gorm.DB) *GormReviewRepository
}

// ReviewListFilter 评价列表筛选
type ReviewListFilter struct {
	ProductID  uint
	UserID     uint
	IsApproved *bool
	Page       int
	PageSize   int
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReviewRepository) WithTx(tx *gorm.DB) *GormReviewRepository {
	if tx == nil {
		return r
	}
	return &GormReviewRepository{db: tx}
}

// GetByID 根据ID获取评价（含评价用户）
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// GetByUserAndProduct 获取某用户对某商品的评价
func (r *GormReviewRepository) GetByUserAndProduct(userID, productID uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// Create 创建评价
// 同一用户对同一商品的重复写入由联合唯一索引拦截。
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update 更新评价
// 只落库评价本身，不级联写入关联的用户与商品。
func (r *GormReviewRepository) Update(review *models.Review) error {
	return r.db.Omit(clause.Associations).Save(review).Error
}

// Delete 删除评价
// 硬删除，删除后允许重新评价，软删除残留会占用 user+product 联合唯一索引。
func (r *GormReviewRepository) Delete(id uint) error {
	return r.db.Unscoped().Delete(&models.Review{}, id).Error
}

// ListApprovedByProduct 获取某商品已审核通过的评价列表
func (r *GormReviewRepository) ListApprovedByProduct(productID uint, page, pageSize int) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var reviews []models.Review
	if err := query.Preload("User").Order("created_at desc, id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListByUser 获取某用户的评价列表（不过滤审核状态）
func (r *GormReviewRepository) ListByUser(userID uint, page, pageSize int) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var reviews []models.Review
	if err := query.Preload("Product").Order("created_at desc, id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// List 获取评价列表
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{})

	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.IsApproved != nil {
		query = query.Where("is_approved = ?", *filter.IsApproved)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var reviews []models.Review
	if err := query.Preload("User").Preload("Product").Order("created_at desc, id desc").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// RatingBuckets 统计某商品各评分档位的已审核评价数
func (r *GormReviewRepository) RatingBuckets(productID uint) (map[int]int64, error) {
	type bucketRow struct {
		Rating int
		Total  int64
	}
	var rows []bucketRow
	err := r.db.Model(&models.Review{}).
		Select("rating, count(*) as total").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buckets := make(map[int]int64, len(rows))
	for _, row := range rows {
		buckets[row.Rating] = row.Total
	}
	return buckets, nil
}

// IncrementHelpfulCount 累加有用票数
// 返回受影响行数，0 表示评价不存在。
func (r *GormReviewRepository) IncrementHelpfulCount(id uint) (int64, error) {
	result := r.db.Model(&models.Review{}).
		Where("id = ?", id).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetApproval 更新审核状态
// 返回受影响行数，0 表示评价不存在。
func (r *GormReviewRepository) SetApproval(id uint, approved bool) (int64, error) {
	result := r.db.Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_approved", approved)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
