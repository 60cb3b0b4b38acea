package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.PromoCode{},
		&models.PromoCodeUsage{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	promoService := NewPromoService(
		repository.NewPromoCodeRepository(db),
		repository.NewPromoCodeUsageRepository(db),
	)
	svc := NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		promoService,
		nil,
	)
	return svc, db
}

func seedOrderUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", DisplayName: email, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func seedOrderProduct(t *testing.T, db *gorm.DB, slug, price string, stock int, active bool) models.Product {
	t.Helper()
	category := models.Category{Slug: slug + "-cat", Name: slug}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("parse price %s failed: %v", price, err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Slug:       slug,
		Name:       slug,
		Price:      models.NewMoneyFromDecimal(d),
		Images:     models.StringArray([]string{"https://cdn.example.com/" + slug + ".jpg"}),
		Stock:      stock,
		IsActive:   active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func seedCartItem(t *testing.T, db *gorm.DB, userID, productID uint, quantity int) {
	t.Helper()
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func cartCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count cart items failed: %v", err)
	}
	return count
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")

	if _, err := svc.Checkout(user.ID, ""); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}
}

func TestCheckoutSnapshotsAndPromo(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "60.00", 10, true)
	jacket := seedOrderProduct(t, db, "canvas-jacket", "80.00", 5, true)
	seedCartItem(t, db, user.ID, tee.ID, 2)
	seedCartItem(t, db, user.ID, jacket.ID, 1)

	expires := time.Now().Add(24 * time.Hour)
	promo := models.PromoCode{
		Code:            "SAVE10",
		DiscountType:    constants.PromoTypePercentage,
		DiscountValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		MaximumDiscount: models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		UsageLimit:      100,
		ExpiresAt:       &expires,
		IsActive:        true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	order, err := svc.Checkout(user.ID, "save10")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNo, "TT") {
		t.Fatalf("order no should carry TT prefix, got %s", order.OrderNo)
	}
	// 小计 60*2 + 80 = 200，10% 折扣封顶 15
	if order.Subtotal.String() != "200.00" {
		t.Fatalf("subtotal want 200.00 got %s", order.Subtotal.String())
	}
	if order.DiscountAmount.String() != "15.00" {
		t.Fatalf("discount want 15.00 got %s", order.DiscountAmount.String())
	}
	if order.TotalAmount.String() != "185.00" {
		t.Fatalf("total want 185.00 got %s", order.TotalAmount.String())
	}
	if order.PromoCode != "SAVE10" {
		t.Fatalf("order promo code want SAVE10 got %s", order.PromoCode)
	}

	if len(order.Items) != 2 {
		t.Fatalf("order items want 2 got %d", len(order.Items))
	}
	byProduct := map[uint]models.OrderItem{}
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	teeItem := byProduct[tee.ID]
	if teeItem.ProductName != "cotton-tee" || teeItem.UnitPrice.String() != "60.00" || teeItem.Quantity != 2 {
		t.Fatalf("tee snapshot mismatch: %+v", teeItem)
	}
	if teeItem.ProductImage != "https://cdn.example.com/cotton-tee.jpg" {
		t.Fatalf("tee image snapshot mismatch: %s", teeItem.ProductImage)
	}
	if teeItem.TotalPrice.String() != "120.00" {
		t.Fatalf("tee line total want 120.00 got %s", teeItem.TotalPrice.String())
	}

	if got := reloadProduct(t, db, tee.ID).Stock; got != 8 {
		t.Fatalf("tee stock want 8 got %d", got)
	}
	if got := reloadProduct(t, db, jacket.ID).Stock; got != 4 {
		t.Fatalf("jacket stock want 4 got %d", got)
	}
	if got := cartCount(t, db, user.ID); got != 0 {
		t.Fatalf("cart should be cleared, got %d items", got)
	}

	var reloadedPromo models.PromoCode
	if err := db.First(&reloadedPromo, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloadedPromo.UsedCount != 1 {
		t.Fatalf("promo used_count want 1 got %d", reloadedPromo.UsedCount)
	}
	var usage models.PromoCodeUsage
	if err := db.Where("order_id = ?", order.ID).First(&usage).Error; err != nil {
		t.Fatalf("load promo usage failed: %v", err)
	}
	if usage.UserID != user.ID || usage.DiscountAmount.String() != "15.00" {
		t.Fatalf("promo usage mismatch: %+v", usage)
	}
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	jeans := seedOrderProduct(t, db, "selvedge-jeans", "148.00", 1, true)
	seedCartItem(t, db, user.ID, jeans.ID, 2)

	if _, err := svc.Checkout(user.ID, ""); !errors.Is(err, ErrProductStockInsufficient) {
		t.Fatalf("want ErrProductStockInsufficient got %v", err)
	}

	if got := reloadProduct(t, db, jeans.ID).Stock; got != 1 {
		t.Fatalf("stock should be untouched after rollback, got %d", got)
	}
	if got := cartCount(t, db, user.ID); got != 1 {
		t.Fatalf("cart should be kept after rollback, got %d items", got)
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("no order should be written after rollback, got %d", orderCount)
	}
}

func TestCheckoutInactiveProduct(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	retired := seedOrderProduct(t, db, "retired-trousers", "118.00", 10, false)
	seedCartItem(t, db, user.ID, retired.ID, 1)

	if _, err := svc.Checkout(user.ID, ""); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("want ErrProductNotAvailable got %v", err)
	}
}

func TestCheckoutPromoFailureAborts(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "24.90", 10, true)
	seedCartItem(t, db, user.ID, tee.ID, 1)

	promo := models.PromoCode{
		Code:          "BIGSPEND",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		MinimumOrder:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		IsActive:      true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}

	if _, err := svc.Checkout(user.ID, "BIGSPEND"); !errors.Is(err, ErrPromoMinimumOrder) {
		t.Fatalf("want ErrPromoMinimumOrder got %v", err)
	}
	if got := reloadProduct(t, db, tee.ID).Stock; got != 10 {
		t.Fatalf("stock should be untouched, got %d", got)
	}
	if got := cartCount(t, db, user.ID); got != 1 {
		t.Fatalf("cart should be kept, got %d items", got)
	}
}

func TestCancelForUserRestoresStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	other := seedOrderUser(t, db, "other@example.com")
	beanie := seedOrderProduct(t, db, "merino-beanie", "29.00", 6, true)
	seedCartItem(t, db, user.ID, beanie.ID, 2)

	order, err := svc.Checkout(user.ID, "")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if got := reloadProduct(t, db, beanie.ID).Stock; got != 4 {
		t.Fatalf("stock after checkout want 4 got %d", got)
	}

	if _, err := svc.CancelForUser(other.ID, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("cancel by another user want ErrOrderNotFound got %v", err)
	}

	cancelled, err := svc.CancelForUser(user.ID, order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("cancelled_at should be set")
	}
	if got := reloadProduct(t, db, beanie.ID).Stock; got != 6 {
		t.Fatalf("stock after cancel want 6 got %d", got)
	}

	// 已取消订单不可再次取消
	if _, err := svc.CancelForUser(user.ID, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("second cancel want ErrOrderStatusInvalid got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	belt := seedOrderProduct(t, db, "leather-belt", "45.00", 9, true)
	seedCartItem(t, db, user.ID, belt.ID, 1)

	order, err := svc.Checkout(user.ID, "")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("pending -> delivered want ErrOrderStatusInvalid got %v", err)
	}

	shipped, err := svc.UpdateStatus(order.ID, "Shipped")
	if err != nil {
		t.Fatalf("pending -> shipped failed: %v", err)
	}
	if shipped.Status != constants.OrderStatusShipped || shipped.ShippedAt == nil {
		t.Fatalf("shipped order should carry shipped_at, got %+v", shipped)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("shipped -> cancelled want ErrOrderStatusInvalid got %v", err)
	}

	delivered, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("shipped -> delivered failed: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("delivered order should carry delivered_at, got %+v", delivered)
	}

	// 终态不可再流转
	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusPending); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("delivered -> pending want ErrOrderStatusInvalid got %v", err)
	}

	if _, err := svc.UpdateStatus(9999, constants.OrderStatusShipped); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order want ErrOrderNotFound got %v", err)
	}
}

func TestOrderHistoryNewestFirst(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "24.90", 50, true)

	for i := 0; i < 3; i++ {
		seedCartItem(t, db, user.ID, tee.ID, 1)
		if _, err := svc.Checkout(user.ID, ""); err != nil {
			t.Fatalf("checkout %d failed: %v", i, err)
		}
	}

	orders, total, err := svc.History(user.ID, 1, 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total want 3 got %d", total)
	}
	if len(orders) != 2 {
		t.Fatalf("page size want 2 got %d", len(orders))
	}
	if orders[0].ID < orders[1].ID {
		t.Fatalf("history should be newest first, got ids %d, %d", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].ProductName != "cotton-tee" {
		t.Fatalf("history should include item snapshots, got %+v", orders[0].Items)
	}
}
