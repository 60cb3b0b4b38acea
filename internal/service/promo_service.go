package service

import (
	"strings"
	"time"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoService 优惠码服务
type PromoService struct {
	promoRepo repository.PromoCodeRepository
	usageRepo repository.PromoCodeUsageRepository
}

// NewPromoService 创建优惠码服务
func NewPromoService(promoRepo repository.PromoCodeRepository, usageRepo repository.PromoCodeUsageRepository) *PromoService {
	return &PromoService{
		promoRepo: promoRepo,
		usageRepo: usageRepo,
	}
}

// PromoValidation 优惠码校验结果
type PromoValidation struct {
	Type   string       `json:"type"`
	Value  models.Money `json:"value"`
	Amount models.Money `json:"amount"`
	Code   string       `json:"code"`
}

// Validate 校验优惠码并计算折扣金额。
// 校验顺序固定：存在性与启用状态、有效期、总使用上限、最低订单金额。
// 返回的 PromoCode 供调用方拼装提示信息，校验失败时也可能非空。
func (s *PromoService) Validate(code string, subtotal models.Money) (*PromoValidation, *models.PromoCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil, ErrPromoNotFound
	}

	promo, err := s.promoRepo.GetActiveByCode(normalized)
	if err != nil {
		return nil, nil, err
	}
	if promo == nil {
		// 不存在与未启用不作区分
		return nil, nil, ErrPromoNotFound
	}

	now := time.Now()
	if promo.ExpiresAt != nil && now.After(*promo.ExpiresAt) {
		return nil, promo, ErrPromoExpired
	}

	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return nil, promo, ErrPromoUsageLimit
	}

	if subtotal.Decimal.Cmp(promo.MinimumOrder.Decimal) < 0 {
		return nil, promo, ErrPromoMinimumOrder
	}

	amount := s.calculateDiscount(promo, subtotal)
	return &PromoValidation{
		Type:   promo.DiscountType,
		Value:  promo.DiscountValue,
		Amount: amount,
		Code:   promo.Code,
	}, promo, nil
}

// calculateDiscount 计算折扣金额。
// 百分比折扣受最大优惠金额封顶，固定折扣不超过订单小计，未知类型折扣为零。
func (s *PromoService) calculateDiscount(promo *models.PromoCode, subtotal models.Money) models.Money {
	switch strings.ToLower(strings.TrimSpace(promo.DiscountType)) {
	case constants.PromoTypePercentage:
		percent := promo.DiscountValue.Decimal.Div(decimal.NewFromInt(100))
		discount := subtotal.Decimal.Mul(percent)
		if promo.MaximumDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(promo.MaximumDiscount.Decimal) {
			discount = promo.MaximumDiscount.Decimal
		}
		return models.NewMoneyFromDecimal(discount)
	case constants.PromoTypeFixed:
		discount := promo.DiscountValue.Decimal
		if discount.GreaterThan(subtotal.Decimal) {
			discount = subtotal.Decimal
		}
		return models.NewMoneyFromDecimal(discount)
	default:
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
}

// RecordUsage 记录一次优惠码使用。
// 通过条件更新累加使用次数，并发下到达上限时返回 ErrPromoUsageLimit。
func (s *PromoService) RecordUsage(tx *gorm.DB, promoCodeID, userID, orderID uint, discount models.Money) error {
	promoRepo := s.promoRepo
	usageRepo := s.usageRepo
	if tx != nil {
		promoRepo = s.promoRepo.WithTx(tx)
		usageRepo = s.usageRepo.WithTx(tx)
	}

	affected, err := promoRepo.IncrementUsedCountWithinLimit(promoCodeID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPromoUsageLimit
	}

	return usageRepo.Create(&models.PromoCodeUsage{
		PromoCodeID:    promoCodeID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
	})
}
