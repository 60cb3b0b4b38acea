package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表
// 同一用户对同一商品仅允许一条评价，由联合唯一索引保证。
type Review struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                           // 主键
	UserID             uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"user_id"`    // 用户ID
	ProductID          uint           `gorm:"not null;uniqueIndex:idx_review_user_product" json:"product_id"` // 商品ID
	OrderItemID        *uint          `gorm:"index" json:"order_item_id,omitempty"`                           // 购买凭证订单项ID
	Rating             int            `gorm:"not null" json:"rating"`                                         // 评分（1-5）
	Title              string         `gorm:"type:varchar(200)" json:"title"`                                 // 评价标题
	Comment            string         `gorm:"type:text;not null" json:"comment"`                              // 评价内容
	IsVerifiedPurchase bool           `gorm:"not null;default:false" json:"is_verified_purchase"`             // 是否已验证购买
	IsApproved         bool           `gorm:"not null;index" json:"is_approved"`                              // 是否已审核通过，默认值由服务层显式写入
	HelpfulCount       int            `gorm:"not null;default:0" json:"helpful_count"`                        // 有用票数
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	// 关联
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 评价用户
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
