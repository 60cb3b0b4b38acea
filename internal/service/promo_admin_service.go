package service

import (
	"strings"
	"time"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoAdminService 优惠码管理服务
type PromoAdminService struct {
	repo repository.PromoCodeRepository
}

// NewPromoAdminService 创建优惠码管理服务
func NewPromoAdminService(repo repository.PromoCodeRepository) *PromoAdminService {
	return &PromoAdminService{repo: repo}
}

// CreatePromoCodeInput 创建优惠码输入
type CreatePromoCodeInput struct {
	Code            string
	DiscountType    string
	DiscountValue   models.Money
	MinimumOrder    models.Money
	MaximumDiscount models.Money
	UsageLimit      int
	ExpiresAt       *time.Time
	IsActive        *bool
}

// UpdatePromoCodeInput 更新优惠码输入
type UpdatePromoCodeInput struct {
	DiscountValue   models.Money
	MinimumOrder    models.Money
	MaximumDiscount models.Money
	UsageLimit      int
	ExpiresAt       *time.Time
	IsActive        *bool
}

// Create 创建优惠码
// 优惠码统一大写存储，重复创建返回 ErrPromoExists。
func (s *PromoAdminService) Create(input CreatePromoCodeInput) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrPromoInvalid
	}
	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	if discountType != constants.PromoTypePercentage && discountType != constants.PromoTypeFixed {
		return nil, ErrPromoInvalid
	}
	if input.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPromoInvalid
	}
	if discountType == constants.PromoTypePercentage && input.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrPromoInvalid
	}
	if input.MinimumOrder.Decimal.LessThan(decimal.Zero) || input.MaximumDiscount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrPromoInvalid
	}
	if input.UsageLimit < 0 {
		return nil, ErrPromoInvalid
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromoExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	promo := &models.PromoCode{
		Code:            code,
		DiscountType:    discountType,
		DiscountValue:   input.DiscountValue,
		MinimumOrder:    input.MinimumOrder,
		MaximumDiscount: input.MaximumDiscount,
		UsageLimit:      input.UsageLimit,
		UsedCount:       0,
		ExpiresAt:       input.ExpiresAt,
		IsActive:        isActive,
	}

	if err := s.repo.Create(promo); err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, ErrPromoExists
		}
		return nil, err
	}
	return promo, nil
}

// Update 更新优惠码（不允许修改 code 与已用次数）
func (s *PromoAdminService) Update(id uint, input UpdatePromoCodeInput) (*models.PromoCode, error) {
	if id == 0 {
		return nil, ErrPromoInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromoNotFound
	}

	if input.DiscountValue.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPromoInvalid
	}
	if existing.DiscountType == constants.PromoTypePercentage && input.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrPromoInvalid
	}
	if input.MinimumOrder.Decimal.LessThan(decimal.Zero) || input.MaximumDiscount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrPromoInvalid
	}
	if input.UsageLimit < 0 {
		return nil, ErrPromoInvalid
	}

	existing.DiscountValue = input.DiscountValue
	existing.MinimumOrder = input.MinimumOrder
	existing.MaximumDiscount = input.MaximumDiscount
	existing.UsageLimit = input.UsageLimit
	existing.ExpiresAt = input.ExpiresAt
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Deactivate 停用优惠码
// 历史订单保留优惠码快照，因此只停用不删除。
func (s *PromoAdminService) Deactivate(id uint) (*models.PromoCode, error) {
	if id == 0 {
		return nil, ErrPromoInvalid
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPromoNotFound
	}
	if !existing.IsActive {
		return existing, nil
	}
	existing.IsActive = false
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// List 获取优惠码列表（按创建时间倒序）
func (s *PromoAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.repo.List(filter)
}

// DeactivateExpired 停用所有已过期仍启用的优惠码，返回停用数量。
func (s *PromoAdminService) DeactivateExpired(now time.Time) (int, error) {
	active := true
	promos, _, err := s.repo.List(repository.PromoCodeListFilter{IsActive: &active})
	if err != nil {
		return 0, err
	}
	deactivated := 0
	for i := range promos {
		promo := &promos[i]
		if promo.ExpiresAt == nil || now.Before(*promo.ExpiresAt) {
			continue
		}
		promo.IsActive = false
		if err := s.repo.Update(promo); err != nil {
			return deactivated, err
		}
		deactivated++
	}
	return deactivated, nil
}
