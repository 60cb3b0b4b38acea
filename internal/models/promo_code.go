package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoCode 优惠码
type PromoCode struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	Code            string         `gorm:"uniqueIndex;not null" json:"code"`                             // 优惠码（统一大写存储）
	DiscountType    string         `gorm:"not null" json:"discount_type"`                                // 类型（percentage/fixed）
	DiscountValue   Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`            // 数值（百分比或固定金额）
	MinimumOrder    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_order"`   // 使用门槛
	MaximumDiscount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"maximum_discount"` // 最大优惠金额（0 表示不封顶）
	UsageLimit      int            `gorm:"not null;default:0" json:"usage_limit"`                        // 总使用上限（0 表示不限制）
	UsedCount       int            `gorm:"not null;default:0" json:"used_count"`                         // 已使用次数
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at"`                                      // 失效时间
	IsActive        bool           `gorm:"not null" json:"is_active"`                                    // 是否启用，默认值由服务层显式写入
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}
