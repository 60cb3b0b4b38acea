package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestCartUpsertItem(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "24.90", 5, true)
	retired := seedOrderProduct(t, db, "retired-trousers", "118.00", 5, false)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 0}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("zero quantity want ErrInvalidOrderItem got %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: retired.ID, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("inactive product want ErrProductNotAvailable got %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 6}); !errors.Is(err, ErrProductStockInsufficient) {
		t.Fatalf("over stock want ErrProductStockInsufficient got %v", err)
	}

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// 同一商品再次加入覆盖数量而非新增行
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 3}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	details, err := svc.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("cart rows want 1 got %d", len(details))
	}
	if details[0].Quantity != 3 || details[0].UnitPrice.String() != "24.90" {
		t.Fatalf("cart detail mismatch: %+v", details[0])
	}
}

func TestCartListDropsUnavailableProducts(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "24.90", 5, true)
	jacket := seedOrderProduct(t, db, "canvas-jacket", "189.00", 5, true)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert tee failed: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: jacket.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert jacket failed: %v", err)
	}

	// 加入购物车后商品被下架
	if err := db.Model(&models.Product{}).Where("id = ?", jacket.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	details, err := svc.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(details) != 1 || details[0].ProductID != tee.ID {
		t.Fatalf("unavailable product should be dropped, got %+v", details)
	}
	if got := cartCount(t, db, user.ID); got != 1 {
		t.Fatalf("stale cart row should be removed, got %d", got)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	user := seedOrderUser(t, db, "buyer@example.com")
	tee := seedOrderProduct(t, db, "cotton-tee", "24.90", 5, true)
	belt := seedOrderProduct(t, db, "leather-belt", "45.00", 5, true)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: belt.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := svc.RemoveItem(user.ID, tee.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := cartCount(t, db, user.ID); got != 1 {
		t.Fatalf("cart rows after remove want 1 got %d", got)
	}

	// 删除后重新加入同一商品
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: user.ID, ProductID: tee.ID, Quantity: 2}); err != nil {
		t.Fatalf("re-add after remove failed: %v", err)
	}

	if err := svc.Clear(user.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := cartCount(t, db, user.ID); got != 0 {
		t.Fatalf("cart should be empty after clear, got %d", got)
	}
}
