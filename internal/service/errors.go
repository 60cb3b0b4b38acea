package service

import "errors"

// 业务错误定义
// 处理器按 errors.Is 将其映射为接口错误响应。
var (
	// 认证相关
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrProfileEmpty       = errors.New("profile has nothing to update")
	ErrNotFound           = errors.New("record not found")

	// 商品与分类
	ErrSlugExists               = errors.New("slug already exists")
	ErrCategoryInUse            = errors.New("category in use")
	ErrProductNotAvailable      = errors.New("product not available")
	ErrProductStockInsufficient = errors.New("product stock insufficient")

	// 购物车与订单
	ErrInvalidOrderItem   = errors.New("invalid order item")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatusInvalid = errors.New("order status invalid")

	// 优惠码
	ErrPromoInvalid      = errors.New("promo code invalid")
	ErrPromoNotFound     = errors.New("promo code not found")
	ErrPromoExists       = errors.New("promo code already exists")
	ErrPromoExpired      = errors.New("promo code expired")
	ErrPromoUsageLimit   = errors.New("promo code usage limit reached")
	ErrPromoMinimumOrder = errors.New("promo code minimum order not met")

	// 评价
	ErrReviewInvalidRating   = errors.New("review rating out of range")
	ErrReviewCommentTooShort = errors.New("review comment too short")
	ErrReviewDuplicate       = errors.New("review already exists")
	ErrReviewNotEligible     = errors.New("review not eligible")
	ErrReviewNotFound        = errors.New("review not found")
	ErrReviewActionInvalid   = errors.New("review moderation action invalid")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	// 队列
	ErrQueueUnavailable = errors.New("queue unavailable")
)
