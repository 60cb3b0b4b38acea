package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 优惠码类型常量
const (
	PromoTypePercentage = "percentage"
	PromoTypeFixed      = "fixed"
)

// 评价审核状态常量
const (
	ReviewStatusApproved = "approved"
	ReviewStatusPending  = "pending"
)

// 评价审核动作常量
const (
	ReviewModerateActionApprove = "approve"
	ReviewModerateActionReject  = "reject"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列常量
const (
	QueueDefault         = "default"
	TaskOrderStatusEmail = "order:status_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "tt"
)
