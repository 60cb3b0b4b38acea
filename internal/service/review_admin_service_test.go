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
	"gorm.io/gorm"
)

func setupReviewAdminServiceTest(t *testing.T) (*ReviewAdminService, *ReviewService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:review_admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	reviewRepo := repository.NewReviewRepository(db)
	adminSvc := NewReviewAdminService(reviewRepo)
	reviewSvc := NewReviewService(reviewRepo, repository.NewOrderRepository(db), repository.NewProductRepository(db))
	return adminSvc, reviewSvc, db
}

func TestReviewModerate(t *testing.T) {
	adminSvc, reviewSvc, db := setupReviewAdminServiceTest(t)
	buyer := seedReviewUser(t, db, "buyer@example.com")
	product := seedReviewProduct(t, db, "wool-overshirt")
	seedPurchase(t, db, buyer.ID, product.ID, constants.OrderStatusDelivered)

	review, err := reviewSvc.Create(CreateReviewInput{
		UserID:    buyer.ID,
		ProductID: product.ID,
		Rating:    2,
		Comment:   "Color faded badly after the first wash.",
	})
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}

	if err := adminSvc.Moderate(review.ID, "hide"); !errors.Is(err, ErrReviewActionInvalid) {
		t.Fatalf("unknown action want ErrReviewActionInvalid got %v", err)
	}
	if err := adminSvc.Moderate(9999, constants.ReviewModerateActionReject); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("missing review want ErrReviewNotFound got %v", err)
	}

	if err := adminSvc.Moderate(review.ID, constants.ReviewModerateActionReject); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	stats, err := reviewSvc.RatingStatsForProduct(product.ID)
	if err != nil {
		t.Fatalf("rating stats failed: %v", err)
	}
	if stats.TotalReviews != 0 {
		t.Fatalf("rejected review should leave stats empty, got %+v", stats)
	}

	if err := adminSvc.Moderate(review.ID, "Approve"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	stats, err = reviewSvc.RatingStatsForProduct(product.ID)
	if err != nil {
		t.Fatalf("rating stats failed: %v", err)
	}
	if stats.TotalReviews != 1 || stats.TwoStar != 1 {
		t.Fatalf("approved review should count in stats, got %+v", stats)
	}
}

func TestReviewAdminListFilters(t *testing.T) {
	adminSvc, reviewSvc, db := setupReviewAdminServiceTest(t)
	product := seedReviewProduct(t, db, "camp-collar-shirt")

	for i := 0; i < 3; i++ {
		user := seedReviewUser(t, db, fmt.Sprintf("buyer%d@example.com", i))
		seedPurchase(t, db, user.ID, product.ID, constants.OrderStatusDelivered)
		review, err := reviewSvc.Create(CreateReviewInput{
			UserID:    user.ID,
			ProductID: product.ID,
			Rating:    4,
			Comment:   fmt.Sprintf("Review %d, fits true to size.", i),
		})
		if err != nil {
			t.Fatalf("create review %d failed: %v", i, err)
		}
		if i == 0 {
			if err := adminSvc.Moderate(review.ID, constants.ReviewModerateActionReject); err != nil {
				t.Fatalf("reject failed: %v", err)
			}
		}
	}

	_, total, err := adminSvc.List("", 1, 20)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("all reviews want 3 got %d", total)
	}

	_, total, err = adminSvc.List(constants.ReviewStatusApproved, 1, 20)
	if err != nil {
		t.Fatalf("list approved failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("approved reviews want 2 got %d", total)
	}

	pending, total, err := adminSvc.List(constants.ReviewStatusPending, 1, 20)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if total != 1 || len(pending) != 1 || pending[0].IsApproved {
		t.Fatalf("pending reviews want 1 unapproved row, got total=%d rows=%+v", total, pending)
	}
}
