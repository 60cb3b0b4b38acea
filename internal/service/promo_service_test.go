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

func setupPromoServiceTest(t *testing.T) (*PromoService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}, &models.PromoCodeUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewPromoService(repository.NewPromoCodeRepository(db), repository.NewPromoCodeUsageRepository(db))
	return svc, db
}

func seedPromoCode(t *testing.T, db *gorm.DB, promo models.PromoCode) models.PromoCode {
	t.Helper()
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}
	return promo
}

func money(t *testing.T, value string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %s failed: %v", value, err)
	}
	return models.NewMoneyFromDecimal(d)
}

func TestPromoValidatePercentageCappedByMaximumDiscount(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	seedPromoCode(t, db, models.PromoCode{
		Code:            "SAVE10",
		DiscountType:    constants.PromoTypePercentage,
		DiscountValue:   money(t, "10"),
		MaximumDiscount: money(t, "15"),
		IsActive:        true,
	})

	validation, promo, err := svc.Validate("save10", money(t, "200"))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if promo == nil || promo.Code != "SAVE10" {
		t.Fatalf("expected matched promo SAVE10, got %+v", promo)
	}
	// 200 * 10% = 20，封顶 15
	if validation.Amount.String() != "15.00" {
		t.Fatalf("discount want 15.00 got %s", validation.Amount.String())
	}
}

func TestPromoValidateFixedClampedToSubtotal(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	seedPromoCode(t, db, models.PromoCode{
		Code:          "FLAT75",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "75"),
		IsActive:      true,
	})

	validation, _, err := svc.Validate("FLAT75", money(t, "50"))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if validation.Amount.String() != "50.00" {
		t.Fatalf("discount want 50.00 got %s", validation.Amount.String())
	}
}

func TestPromoValidateUnknownTypeZeroDiscount(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	seedPromoCode(t, db, models.PromoCode{
		Code:          "MYSTERY",
		DiscountType:  "bogo",
		DiscountValue: money(t, "30"),
		IsActive:      true,
	})

	validation, _, err := svc.Validate("MYSTERY", money(t, "100"))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if validation.Amount.String() != "0.00" {
		t.Fatalf("unknown type discount want 0.00 got %s", validation.Amount.String())
	}
}

func TestPromoValidateRejections(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	expired := time.Now().Add(-time.Hour)
	seedPromoCode(t, db, models.PromoCode{
		Code:          "EXPIRED",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		ExpiresAt:     &expired,
		IsActive:      true,
	})
	seedPromoCode(t, db, models.PromoCode{
		Code:          "EXHAUSTED",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		UsageLimit:    5,
		UsedCount:     5,
		IsActive:      true,
	})
	seedPromoCode(t, db, models.PromoCode{
		Code:          "BIGSPEND",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		MinimumOrder:  money(t, "100"),
		IsActive:      true,
	})
	seedPromoCode(t, db, models.PromoCode{
		Code:          "DISABLED",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		IsActive:      false,
	})

	if _, _, err := svc.Validate("NOPE", money(t, "100")); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("unknown code want ErrPromoNotFound got %v", err)
	}
	if _, _, err := svc.Validate("DISABLED", money(t, "100")); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("disabled code want ErrPromoNotFound got %v", err)
	}
	if _, _, err := svc.Validate("EXPIRED", money(t, "100")); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("expired code want ErrPromoExpired got %v", err)
	}
	if _, _, err := svc.Validate("EXHAUSTED", money(t, "100")); !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("exhausted code want ErrPromoUsageLimit got %v", err)
	}
	_, promo, err := svc.Validate("BIGSPEND", money(t, "99.99"))
	if !errors.Is(err, ErrPromoMinimumOrder) {
		t.Fatalf("below minimum want ErrPromoMinimumOrder got %v", err)
	}
	if promo == nil || promo.MinimumOrder.String() != "100.00" {
		t.Fatalf("minimum-order rejection should still return the promo, got %+v", promo)
	}
}

func TestPromoValidateUsageLimitBoundary(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	seeded := seedPromoCode(t, db, models.PromoCode{
		Code:          "LASTONE",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		UsageLimit:    5,
		UsedCount:     4,
		IsActive:      true,
	})

	// limit-1 仍可使用
	if _, _, err := svc.Validate("LASTONE", money(t, "100")); err != nil {
		t.Fatalf("validate at limit-1 failed: %v", err)
	}

	if err := svc.RecordUsage(nil, seeded.ID, 1, 1, money(t, "5")); err != nil {
		t.Fatalf("record usage failed: %v", err)
	}
	if _, _, err := svc.Validate("LASTONE", money(t, "100")); !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("validate at limit want ErrPromoUsageLimit got %v", err)
	}
}

func TestPromoRecordUsageConditionalIncrement(t *testing.T) {
	svc, db := setupPromoServiceTest(t)
	seeded := seedPromoCode(t, db, models.PromoCode{
		Code:          "ONCE",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		UsageLimit:    1,
		IsActive:      true,
	})

	if err := svc.RecordUsage(nil, seeded.ID, 7, 11, money(t, "5")); err != nil {
		t.Fatalf("first record usage failed: %v", err)
	}
	if err := svc.RecordUsage(nil, seeded.ID, 8, 12, money(t, "5")); !errors.Is(err, ErrPromoUsageLimit) {
		t.Fatalf("second record usage want ErrPromoUsageLimit got %v", err)
	}

	var promo models.PromoCode
	if err := db.First(&promo, seeded.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if promo.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", promo.UsedCount)
	}
	var usageCount int64
	if err := db.Model(&models.PromoCodeUsage{}).Where("promo_code_id = ?", seeded.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("usage rows want 1 got %d", usageCount)
	}
}
