package service

import (
	"math"
	"strings"

	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"
)

// 评价内容最小长度（按去除首尾空白后的字符数）
const reviewCommentMinLength = 10

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// ReviewEligibility 评价资格
type ReviewEligibility struct {
	CanReview      bool           `json:"can_review"`
	HasPurchased   bool           `json:"has_purchased"`
	HasReviewed    bool           `json:"has_reviewed"`
	ExistingReview *models.Review `json:"existing_review,omitempty"`
	OrderItemID    *uint          `json:"order_item_id,omitempty"`
}

// RatingStats 商品评分统计（仅统计已审核通过的评价）
type RatingStats struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int64   `json:"total_reviews"`
	FiveStar      int64   `json:"five_star"`
	FourStar      int64   `json:"four_star"`
	ThreeStar     int64   `json:"three_star"`
	TwoStar       int64   `json:"two_star"`
	OneStar       int64   `json:"one_star"`
}

// CreateReviewInput 创建评价输入
type CreateReviewInput struct {
	UserID    uint
	ProductID uint
	Rating    int
	Title     string
	Comment   string
}

// UpdateReviewInput 更新评价输入
type UpdateReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// CheckEligibility 查询用户对某商品的评价资格
func (s *ReviewService) CheckEligibility(userID, productID uint) (*ReviewEligibility, error) {
	if userID == 0 || productID == 0 {
		return nil, ErrNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	item, err := s.orderRepo.GetPurchasedItem(userID, productID)
	if err != nil {
		return nil, err
	}
	existing, err := s.reviewRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}

	eligibility := &ReviewEligibility{
		HasPurchased:   item != nil,
		HasReviewed:    existing != nil,
		ExistingReview: existing,
	}
	if item != nil {
		eligibility.OrderItemID = &item.ID
	}
	eligibility.CanReview = eligibility.HasPurchased && !eligibility.HasReviewed
	return eligibility, nil
}

// Create 创建评价
// 写入前重新校验购买凭证与唯一性，并发下的重复提交由联合唯一索引兜底。
func (s *ReviewService) Create(input CreateReviewInput) (*models.Review, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return nil, ErrNotFound
	}
	if err := validateReviewContent(input.Rating, input.Comment); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	item, err := s.orderRepo.GetPurchasedItem(input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrReviewNotEligible
	}

	existing, err := s.reviewRepo.GetByUserAndProduct(input.UserID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewDuplicate
	}

	review := &models.Review{
		UserID:             input.UserID,
		ProductID:          input.ProductID,
		OrderItemID:        &item.ID,
		Rating:             input.Rating,
		Title:              strings.TrimSpace(input.Title),
		Comment:            strings.TrimSpace(input.Comment),
		IsVerifiedPurchase: true,
		IsApproved:         true,
		HelpfulCount:       0,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, ErrReviewDuplicate
		}
		return nil, err
	}

	// 返回带评价用户的完整记录
	created, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return review, nil
	}
	return created, nil
}

// Update 更新自己的评价
// 不存在与非本人的评价统一返回 ErrReviewNotFound，避免泄露他人评价归属。
func (s *ReviewService) Update(reviewID, userID uint, input UpdateReviewInput) (*models.Review, error) {
	if reviewID == 0 || userID == 0 {
		return nil, ErrReviewNotFound
	}
	if err := validateReviewContent(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil || review.UserID != userID {
		return nil, ErrReviewNotFound
	}

	review.Rating = input.Rating
	review.Title = strings.TrimSpace(input.Title)
	review.Comment = strings.TrimSpace(input.Comment)
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete 删除自己的评价
func (s *ReviewService) Delete(reviewID, userID uint) error {
	if reviewID == 0 || userID == 0 {
		return ErrReviewNotFound
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil || review.UserID != userID {
		return ErrReviewNotFound
	}
	return s.reviewRepo.Delete(reviewID)
}

// MarkHelpful 为评价投一票"有用"，返回最新票数。
// 不做去重，同一来源可重复投票。
func (s *ReviewService) MarkHelpful(reviewID uint) (int, error) {
	if reviewID == 0 {
		return 0, ErrReviewNotFound
	}
	affected, err := s.reviewRepo.IncrementHelpfulCount(reviewID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrReviewNotFound
	}
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return 0, err
	}
	if review == nil {
		return 0, ErrReviewNotFound
	}
	return review.HelpfulCount, nil
}

// ListForProduct 获取商品的已审核评价列表与评分统计
func (s *ReviewService) ListForProduct(productID uint, page, pageSize int) ([]models.Review, int64, *RatingStats, error) {
	if productID == 0 {
		return nil, 0, nil, ErrNotFound
	}
	reviews, total, err := s.reviewRepo.ListApprovedByProduct(productID, page, pageSize)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.RatingStatsForProduct(productID)
	if err != nil {
		return nil, 0, nil, err
	}
	return reviews, total, stats, nil
}

// ListForUser 获取用户自己的评价列表（含待审核）
func (s *ReviewService) ListForUser(userID uint, page, pageSize int) ([]models.Review, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.reviewRepo.ListByUser(userID, page, pageSize)
}

// RatingStatsForProduct 按已审核评价实时计算评分统计
func (s *ReviewService) RatingStatsForProduct(productID uint) (*RatingStats, error) {
	buckets, err := s.reviewRepo.RatingBuckets(productID)
	if err != nil {
		return nil, err
	}

	stats := &RatingStats{
		FiveStar:  buckets[5],
		FourStar:  buckets[4],
		ThreeStar: buckets[3],
		TwoStar:   buckets[2],
		OneStar:   buckets[1],
	}
	var sum int64
	for rating, count := range buckets {
		stats.TotalReviews += count
		sum += int64(rating) * count
	}
	if stats.TotalReviews > 0 {
		average := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(average*10) / 10
	}
	return stats, nil
}

func validateReviewContent(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrReviewInvalidRating
	}
	if len(strings.TrimSpace(comment)) < reviewCommentMinLength {
		return ErrReviewCommentTooShort
	}
	return nil
}
