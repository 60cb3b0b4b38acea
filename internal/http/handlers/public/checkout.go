package public

import (
	"errors"
	"fmt"

	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	PromoCode string `json:"promo_code"`
}

// Checkout 从购物车结算下单
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "invalid request body", err)
			return
		}
	}

	order, err := h.OrderService.Checkout(userID, req.PromoCode)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Created(c, order)
}

// ValidatePromoRequest 优惠码校验请求
type ValidatePromoRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal"`
}

// ValidatePromo 校验优惠码并返回折扣金额
func (h *Handler) ValidatePromo(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "code is required", err)
		return
	}

	subtotal := models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Subtotal))
	validation, promo, err := h.PromoService.Validate(req.Code, subtotal)
	if err != nil {
		if errors.Is(err, service.ErrPromoMinimumOrder) && promo != nil {
			respondError(c, response.CodeBadRequest,
				fmt.Sprintf("Minimum order of %s required for this promo code", promo.MinimumOrder.String()), nil)
			return
		}
		respondWithMappedError(c, err, promoErrorRules, response.CodeInternal, "Failed to validate promo code")
		return
	}
	response.Success(c, validation)
}
