package public

import (
	"errors"

	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var promoErrorRules = []mappedHandlerError{
	{target: service.ErrPromoNotFound, code: response.CodeBadRequest, msg: "Invalid promo code"},
	{target: service.ErrPromoInvalid, code: response.CodeBadRequest, msg: "Invalid promo code"},
	{target: service.ErrPromoExpired, code: response.CodeBadRequest, msg: "Promo code has expired"},
	{target: service.ErrPromoUsageLimit, code: response.CodeBadRequest, msg: "Promo code usage limit reached"},
	{target: service.ErrPromoMinimumOrder, code: response.CodeBadRequest, msg: "Order subtotal does not meet the promo code minimum"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "Cart is empty"},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "Invalid order item"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "Product is not available"},
	{target: service.ErrProductStockInsufficient, code: response.CodeBadRequest, msg: "Insufficient product stock"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "Invalid cart item"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "Product is not available"},
	{target: service.ErrProductStockInsufficient, code: response.CodeBadRequest, msg: "Insufficient product stock"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrReviewInvalidRating, code: response.CodeBadRequest, msg: "rating must be between 1 and 5"},
	{target: service.ErrReviewCommentTooShort, code: response.CodeBadRequest, msg: "comment must be at least 10 characters"},
	{target: service.ErrReviewDuplicate, code: response.CodeBadRequest, msg: "You have already reviewed this product"},
	{target: service.ErrReviewNotEligible, code: response.CodeForbidden, msg: "You can only review products you have purchased"},
	{target: service.ErrReviewNotFound, code: response.CodeNotFound, msg: "Review not found or no permission"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "Product not found"},
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(checkoutErrorRules, promoErrorRules), response.CodeInternal, "Failed to create order")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "Failed to update cart")
}

func respondReviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "Failed to process review")
}
