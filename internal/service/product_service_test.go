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

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB, models.Category) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	category := models.Category{Slug: "outerwear", Name: "Outerwear"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	svc := NewProductService(repository.NewProductRepository(db), repository.NewCategoryRepository(db))
	return svc, db, category
}

func TestProductCreateIsActivePersisted(t *testing.T) {
	svc, db, category := setupProductServiceTest(t)
	inactive := false

	// 创建即下架的商品必须按下架落库
	draft, err := svc.Create(CreateProductInput{
		CategoryID: category.ID,
		Slug:       "wool-overshirt",
		Name:       "Wool Overshirt",
		Price:      money(t, "128.00"),
		Stock:      10,
		IsActive:   &inactive,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if draft.IsActive {
		t.Fatalf("product created inactive should stay inactive")
	}
	var stored models.Product
	if err := db.First(&stored, draft.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("is_active=false must be persisted, database row is active")
	}
	if _, err := svc.GetActiveByID(draft.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive product want ErrNotFound got %v", err)
	}

	// 未指定 is_active 时默认上架
	live, err := svc.Create(CreateProductInput{
		CategoryID: category.ID,
		Slug:       "waxed-canvas-jacket",
		Name:       "Waxed Canvas Jacket",
		Price:      money(t, "189.00"),
		Stock:      5,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !live.IsActive {
		t.Fatalf("product should default to active")
	}
	if _, err := svc.GetActiveByID(live.ID); err != nil {
		t.Fatalf("active product lookup failed: %v", err)
	}
}

func TestProductCreateValidation(t *testing.T) {
	svc, _, category := setupProductServiceTest(t)

	if _, err := svc.Create(CreateProductInput{
		CategoryID: category.ID,
		Slug:       "bad-stock",
		Name:       "Bad Stock",
		Price:      money(t, "10.00"),
		Stock:      -1,
	}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("negative stock want ErrInvalidOrderItem got %v", err)
	}

	if _, err := svc.Create(CreateProductInput{
		CategoryID: 9999,
		Slug:       "orphan",
		Name:       "Orphan",
		Price:      money(t, "10.00"),
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing category want ErrNotFound got %v", err)
	}

	base := CreateProductInput{
		CategoryID: category.ID,
		Slug:       "leather-belt",
		Name:       "Leather Belt",
		Price:      money(t, "45.00"),
		Stock:      3,
	}
	if _, err := svc.Create(base); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(base); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists got %v", err)
	}
}
