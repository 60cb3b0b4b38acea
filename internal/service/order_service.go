package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/logger"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/queue"
	"github.com/threaded-treasure/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单业务服务
type OrderService struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	promoService *PromoService
	queueClient  *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	promoService *PromoService,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		db:           db,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		promoService: promoService,
		queueClient:  queueClient,
	}
}

// Checkout 从购物车结算下单。
// 商品名称、图片与单价在下单时快照到订单项；库存扣减与优惠码计数
// 均为条件更新，在同一事务内保证并发安全。
func (s *OrderService) Checkout(userID uint, promoCode string) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, cartItem := range cartItems {
			if cartItem.Quantity <= 0 {
				return ErrInvalidOrderItem
			}
			product, err := productRepo.GetByID(cartItem.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return ErrProductNotAvailable
			}

			lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductImage: image,
				UnitPrice:    product.Price,
				Quantity:     cartItem.Quantity,
				TotalPrice:   models.NewMoneyFromDecimal(lineTotal),
			})
		}

		subtotalMoney := models.NewMoneyFromDecimal(subtotal)
		discount := models.NewMoneyFromDecimal(decimal.Zero)
		var promo *models.PromoCode
		if strings.TrimSpace(promoCode) != "" {
			validation, matched, err := s.promoService.Validate(promoCode, subtotalMoney)
			if err != nil {
				return err
			}
			discount = validation.Amount
			promo = matched
		}

		total := subtotal.Sub(discount.Decimal)
		if total.LessThan(decimal.Zero) {
			total = decimal.Zero
		}

		newOrder := &models.Order{
			OrderNo:        generateOrderNo(),
			UserID:         userID,
			Status:         constants.OrderStatusPending,
			Subtotal:       subtotalMoney,
			DiscountAmount: discount,
			TotalAmount:    models.NewMoneyFromDecimal(total),
			Items:          orderItems,
		}
		if promo != nil {
			newOrder.PromoCode = promo.Code
		}

		for _, item := range newOrder.Items {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrProductStockInsufficient
			}
		}

		if err := orderRepo.Create(newOrder); err != nil {
			return err
		}

		if promo != nil {
			if err := s.promoService.RecordUsage(tx, promo.ID, userID, newOrder.ID, discount); err != nil {
				return err
			}
		}

		if err := cartRepo.ClearByUser(userID); err != nil {
			return err
		}

		order = newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.enqueueStatusEmail(order.ID, order.Status)
	return order, nil
}

// History 获取用户订单历史（按下单时间倒序，含商品快照）
func (s *OrderService) History(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.orderRepo.ListByUser(userID, page, pageSize)
}

// GetForUser 获取用户自己的订单详情
func (s *OrderService) GetForUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CancelForUser 用户取消待处理订单并回补库存
func (s *OrderService) CancelForUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetForUser(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStatusInvalid
	}
	if err := s.transitionStatus(order, constants.OrderStatusCancelled); err != nil {
		return nil, err
	}
	s.enqueueStatusEmail(order.ID, order.Status)
	return order, nil
}

// List 获取订单列表（管理端）
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetByID 获取订单详情（管理端）
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus 管理端变更订单状态
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !isStatusTransitionAllowed(order.Status, normalized) {
		return nil, ErrOrderStatusInvalid
	}
	if err := s.transitionStatus(order, normalized); err != nil {
		return nil, err
	}
	s.enqueueStatusEmail(order.ID, order.Status)
	return order, nil
}

// transitionStatus 落库状态变更并维护时间戳，取消时回补库存。
func (s *OrderService) transitionStatus(order *models.Order, status string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		order.Status = status
		switch status {
		case constants.OrderStatusShipped:
			order.ShippedAt = &now
		case constants.OrderStatusDelivered:
			order.DeliveredAt = &now
		case constants.OrderStatusCancelled:
			order.CancelledAt = &now
		}

		if err := s.orderRepo.WithTx(tx).Update(order); err != nil {
			return err
		}

		if status == constants.OrderStatusCancelled {
			productRepo := s.productRepo.WithTx(tx)
			for _, item := range order.Items {
				if err := productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *OrderService) enqueueStatusEmail(orderID uint, status string) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("订单状态邮件任务入队失败", "order_id", orderID, "status", status, "error", err)
	}
}

// isStatusTransitionAllowed 校验订单状态流转。
// pending -> processing/shipped/cancelled, processing -> shipped/cancelled,
// shipped -> delivered，delivered 与 cancelled 为终态。
func isStatusTransitionAllowed(from, to string) bool {
	switch from {
	case constants.OrderStatusPending:
		return to == constants.OrderStatusProcessing || to == constants.OrderStatusShipped || to == constants.OrderStatusCancelled
	case constants.OrderStatusProcessing:
		return to == constants.OrderStatusShipped || to == constants.OrderStatusCancelled
	case constants.OrderStatusShipped:
		return to == constants.OrderStatusDelivered
	default:
		return false
	}
}

func generateOrderNo() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("TT%s%s", time.Now().Format("20060102150405"), raw[:10])
}
