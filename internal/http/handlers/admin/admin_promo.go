package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"
	"github.com/threaded-treasure/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const adminDefaultPageSize = 20

// CreatePromoCodeRequest 创建优惠码请求
type CreatePromoCodeRequest struct {
	Code            string  `json:"code" binding:"required"`
	DiscountType    string  `json:"discount_type" binding:"required"`
	DiscountValue   float64 `json:"discount_value" binding:"required"`
	MinimumOrder    float64 `json:"minimum_order"`
	MaximumDiscount float64 `json:"maximum_discount"`
	UsageLimit      int     `json:"usage_limit"`
	ExpiresAt       string  `json:"expires_at"`
	IsActive        *bool   `json:"is_active"`
}

// UpdatePromoCodeRequest 更新优惠码请求
type UpdatePromoCodeRequest struct {
	DiscountValue   float64 `json:"discount_value" binding:"required"`
	MinimumOrder    float64 `json:"minimum_order"`
	MaximumDiscount float64 `json:"maximum_discount"`
	UsageLimit      int     `json:"usage_limit"`
	ExpiresAt       string  `json:"expires_at"`
	IsActive        *bool   `json:"is_active"`
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "code, discount_type and discount_value are required", err)
		return
	}

	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "expires_at must be RFC3339", err)
		return
	}

	promo, err := h.PromoAdminService.Create(service.CreatePromoCodeInput{
		Code:            req.Code,
		DiscountType:    req.DiscountType,
		DiscountValue:   models.NewMoneyFromDecimal(decimal.NewFromFloat(req.DiscountValue)),
		MinimumOrder:    models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinimumOrder)),
		MaximumDiscount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaximumDiscount)),
		UsageLimit:      req.UsageLimit,
		ExpiresAt:       expiresAt,
		IsActive:        req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoExists):
			respondError(c, response.CodeConflict, "promo code already exists", nil)
		case errors.Is(err, service.ErrPromoInvalid):
			respondError(c, response.CodeBadRequest, "invalid promo code definition", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create promo code", err)
		}
		return
	}
	response.Created(c, promo)
}

// UpdatePromoCode 更新优惠码（不允许修改 code 与已用次数）
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "invalid promo code id", err)
		return
	}
	var req UpdatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "discount_value is required", err)
		return
	}

	expiresAt, err := parseTimeNullable(req.ExpiresAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "expires_at must be RFC3339", err)
		return
	}

	promo, err := h.PromoAdminService.Update(uint(promoID), service.UpdatePromoCodeInput{
		DiscountValue:   models.NewMoneyFromDecimal(decimal.NewFromFloat(req.DiscountValue)),
		MinimumOrder:    models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinimumOrder)),
		MaximumDiscount: models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaximumDiscount)),
		UsageLimit:      req.UsageLimit,
		ExpiresAt:       expiresAt,
		IsActive:        req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPromoNotFound):
			respondError(c, response.CodeNotFound, "promo code not found", nil)
		case errors.Is(err, service.ErrPromoInvalid):
			respondError(c, response.CodeBadRequest, "invalid promo code definition", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update promo code", err)
		}
		return
	}
	response.Success(c, promo)
}

// DeactivatePromoCode 停用优惠码
// 历史订单保留优惠码快照，因此只停用不删除。
func (h *Handler) DeactivatePromoCode(c *gin.Context) {
	promoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || promoID == 0 {
		respondError(c, response.CodeBadRequest, "invalid promo code id", err)
		return
	}

	promo, err := h.PromoAdminService.Deactivate(uint(promoID))
	if err != nil {
		if errors.Is(err, service.ErrPromoNotFound) {
			respondError(c, response.CodeNotFound, "promo code not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to deactivate promo code", err)
		return
	}
	response.Success(c, promo)
}

// GetAdminPromoCodes 获取优惠码列表（按创建时间倒序）
// 优惠码数量有限，整表返回不分页。
func (h *Handler) GetAdminPromoCodes(c *gin.Context) {
	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "is_active must be a boolean", err)
			return
		}
		isActive = &parsed
	}

	promos, _, err := h.PromoAdminService.List(repository.PromoCodeListFilter{
		Code:     strings.TrimSpace(c.Query("code")),
		IsActive: isActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load promo codes", err)
		return
	}
	response.Success(c, promos)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
