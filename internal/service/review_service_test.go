package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:review_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
	)
	return svc, db
}

func seedReviewUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", DisplayName: email, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func seedReviewProduct(t *testing.T, db *gorm.DB, slug string) models.Product {
	t.Helper()
	category := models.Category{Slug: slug + "-cat", Name: slug}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Slug:       slug,
		Name:       slug,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Stock:      10,
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

// seedPurchase 为用户创建一张指定状态、含目标商品的订单。
func seedPurchase(t *testing.T, db *gorm.DB, userID, productID uint, status string) models.OrderItem {
	t.Helper()
	order := models.Order{
		OrderNo:     fmt.Sprintf("TT-test-%d-%d-%s", userID, productID, status),
		UserID:      userID,
		Status:      status,
		Subtotal:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Items: []models.OrderItem{
			{
				ProductID:   productID,
				ProductName: "snapshot",
				UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
				Quantity:    1,
				TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order.Items[0]
}

func TestReviewCheckEligibility(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	buyer := seedReviewUser(t, db, "buyer@example.com")
	browser := seedReviewUser(t, db, "browser@example.com")
	pendingOnly := seedReviewUser(t, db, "pending@example.com")
	product := seedReviewProduct(t, db, "wool-scarf")

	item := seedPurchase(t, db, buyer.ID, product.ID, constants.OrderStatusDelivered)
	seedPurchase(t, db, pendingOnly.ID, product.ID, constants.OrderStatusPending)

	got, err := svc.CheckEligibility(browser.ID, product.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if got.CanReview || got.HasPurchased || got.HasReviewed {
		t.Fatalf("user without purchase should not be eligible, got %+v", got)
	}

	// 未完成的订单不构成购买凭证
	got, err = svc.CheckEligibility(pendingOnly.ID, product.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if got.HasPurchased || got.CanReview {
		t.Fatalf("pending order should not count as purchase, got %+v", got)
	}

	got, err = svc.CheckEligibility(buyer.ID, product.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if !got.CanReview || !got.HasPurchased || got.HasReviewed {
		t.Fatalf("delivered order should grant eligibility, got %+v", got)
	}
	if got.OrderItemID == nil || *got.OrderItemID != item.ID {
		t.Fatalf("eligibility should carry the purchase order item id")
	}

	if _, err := svc.Create(CreateReviewInput{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Rating:    5,
		Comment:   "Soft, warm and exactly as pictured.",
	}); err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	got, err = svc.CheckEligibility(buyer.ID, product.ID)
	if err != nil {
		t.Fatalf("check eligibility failed: %v", err)
	}
	if got.CanReview || !got.HasReviewed || got.ExistingReview == nil {
		t.Fatalf("existing review should block a second one, got %+v", got)
	}
}

func TestReviewCreateValidation(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	buyer := seedReviewUser(t, db, "buyer@example.com")
	product := seedReviewProduct(t, db, "selvedge-jeans")
	seedPurchase(t, db, buyer.ID, product.ID, constants.OrderStatusShipped)

	base := CreateReviewInput{UserID: buyer.ID, ProductID: product.ID, Rating: 4, Comment: "Great fade potential on this denim."}

	for _, rating := range []int{0, 6, -1} {
		input := base
		input.Rating = rating
		if _, err := svc.Create(input); !errors.Is(err, ErrReviewInvalidRating) {
			t.Fatalf("rating %d want ErrReviewInvalidRating got %v", rating, err)
		}
	}

	short := base
	short.Comment = "   nice    "
	if _, err := svc.Create(short); !errors.Is(err, ErrReviewCommentTooShort) {
		t.Fatalf("short comment want ErrReviewCommentTooShort got %v", err)
	}

	review, err := svc.Create(base)
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if !review.IsVerifiedPurchase || !review.IsApproved {
		t.Fatalf("review should be verified and approved by default, got %+v", review)
	}
	if review.OrderItemID == nil {
		t.Fatalf("review should reference the purchase order item")
	}
	// 创建结果直接携带评价用户，前端无需二次查询
	if review.User == nil || review.User.DisplayName != "buyer@example.com" {
		t.Fatalf("created review should carry the reviewer, got %+v", review.User)
	}

	if _, err := svc.Create(base); !errors.Is(err, ErrReviewDuplicate) {
		t.Fatalf("second review want ErrReviewDuplicate got %v", err)
	}
}

func TestReviewCreateRequiresPurchase(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	browser := seedReviewUser(t, db, "browser@example.com")
	product := seedReviewProduct(t, db, "camp-shirt")

	_, err := svc.Create(CreateReviewInput{
		UserID:    browser.ID,
		ProductID: product.ID,
		Rating:    5,
		Comment:   "Looks great in the photos at least.",
	})
	if !errors.Is(err, ErrReviewNotEligible) {
		t.Fatalf("want ErrReviewNotEligible got %v", err)
	}
}

func TestReviewUpdateDeleteOwnerOnly(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	buyer := seedReviewUser(t, db, "buyer@example.com")
	other := seedReviewUser(t, db, "other@example.com")
	product := seedReviewProduct(t, db, "waxed-jacket")
	seedPurchase(t, db, buyer.ID, product.ID, constants.OrderStatusDelivered)

	review, err := svc.Create(CreateReviewInput{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Rating:    3,
		Comment:   "Stiff out of the box, breaking in slowly.",
	})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	update := UpdateReviewInput{Rating: 4, Comment: "Broke in nicely after a month of wear."}
	if _, err := svc.Update(review.ID, other.ID, update); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("update by non-owner want ErrReviewNotFound got %v", err)
	}
	if err := svc.Delete(review.ID, other.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("delete by non-owner want ErrReviewNotFound got %v", err)
	}

	updated, err := svc.Update(review.ID, buyer.ID, update)
	if err != nil {
		t.Fatalf("update by owner failed: %v", err)
	}
	if updated.Rating != 4 {
		t.Fatalf("rating want 4 got %d", updated.Rating)
	}

	if err := svc.Delete(review.ID, buyer.ID); err != nil {
		t.Fatalf("delete by owner failed: %v", err)
	}
	if _, err := svc.Update(review.ID, buyer.ID, update); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("update after delete want ErrReviewNotFound got %v", err)
	}
}

func TestReviewMarkHelpfulAccumulates(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	buyer := seedReviewUser(t, db, "buyer@example.com")
	product := seedReviewProduct(t, db, "merino-beanie")
	seedPurchase(t, db, buyer.ID, product.ID, constants.OrderStatusDelivered)

	review, err := svc.Create(CreateReviewInput{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Rating:    5,
		Comment:   "Warm without being itchy, great knit.",
	})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	count, err := svc.MarkHelpful(review.ID)
	if err != nil {
		t.Fatalf("mark helpful failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("helpful count want 1 got %d", count)
	}
	// 不去重，重复投票继续累加
	count, err = svc.MarkHelpful(review.ID)
	if err != nil {
		t.Fatalf("mark helpful failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("helpful count want 2 got %d", count)
	}

	if _, err := svc.MarkHelpful(9999); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("missing review want ErrReviewNotFound got %v", err)
	}
}

func TestReviewRatingStats(t *testing.T) {
	svc, db := setupReviewServiceTest(t)
	product := seedReviewProduct(t, db, "leather-belt")

	ratings := []int{5, 5, 4, 3, 1}
	for i, rating := range ratings {
		user := seedReviewUser(t, db, fmt.Sprintf("buyer%d@example.com", i))
		seedPurchase(t, db, user.ID, product.ID, constants.OrderStatusDelivered)
		if _, err := svc.Create(CreateReviewInput{
			UserID:    user.ID,
			ProductID: product.ID,
			Rating:    rating,
			Comment:   fmt.Sprintf("Review number %d, holding up well.", i),
		}); err != nil {
			t.Fatalf("create review %d failed: %v", i, err)
		}
	}

	// 未通过审核的评价不计入统计
	rejectedUser := seedReviewUser(t, db, "rejected@example.com")
	seedPurchase(t, db, rejectedUser.ID, product.ID, constants.OrderStatusDelivered)
	rejected, err := svc.Create(CreateReviewInput{
		UserID:    rejectedUser.ID,
		ProductID: product.ID,
		Rating:    1,
		Comment:   "This one gets moderated away entirely.",
	})
	if err != nil {
		t.Fatalf("create rejected review failed: %v", err)
	}
	reviewRepo := repository.NewReviewRepository(db)
	if _, err := reviewRepo.SetApproval(rejected.ID, false); err != nil {
		t.Fatalf("set approval failed: %v", err)
	}

	stats, err := svc.RatingStatsForProduct(product.ID)
	if err != nil {
		t.Fatalf("rating stats failed: %v", err)
	}
	if stats.TotalReviews != 5 {
		t.Fatalf("total reviews want 5 got %d", stats.TotalReviews)
	}
	if stats.AverageRating != 3.6 {
		t.Fatalf("average rating want 3.6 got %v", stats.AverageRating)
	}
	if stats.FiveStar != 2 || stats.FourStar != 1 || stats.ThreeStar != 1 || stats.TwoStar != 0 || stats.OneStar != 1 {
		t.Fatalf("bucket counts want 2/1/1/0/1 got %+v", stats)
	}

	reviews, total, listStats, err := svc.ListForProduct(product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list for product failed: %v", err)
	}
	if total != 5 || len(reviews) != 5 {
		t.Fatalf("approved list want 5 rows got total=%d len=%d", total, len(reviews))
	}
	if listStats.AverageRating != 3.6 {
		t.Fatalf("list stats average want 3.6 got %v", listStats.AverageRating)
	}
}
