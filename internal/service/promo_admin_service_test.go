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

func setupPromoAdminServiceTest(t *testing.T) (*PromoAdminService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_admin_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPromoAdminService(repository.NewPromoCodeRepository(db)), db
}

func TestPromoAdminCreateValidation(t *testing.T) {
	svc, _ := setupPromoAdminServiceTest(t)

	base := CreatePromoCodeInput{
		Code:          "  summer20  ",
		DiscountType:  "Percentage",
		DiscountValue: money(t, "20"),
	}

	created, err := svc.Create(base)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Code != "SUMMER20" {
		t.Fatalf("code should be upper-cased and trimmed, got %s", created.Code)
	}
	if created.DiscountType != constants.PromoTypePercentage {
		t.Fatalf("discount type want percentage got %s", created.DiscountType)
	}
	if !created.IsActive {
		t.Fatalf("promo should default to active")
	}

	// 大小写归一后视为同一优惠码
	if _, err := svc.Create(base); !errors.Is(err, ErrPromoExists) {
		t.Fatalf("duplicate create want ErrPromoExists got %v", err)
	}

	cases := []struct {
		name  string
		input CreatePromoCodeInput
	}{
		{name: "empty code", input: CreatePromoCodeInput{DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5")}},
		{name: "bad type", input: CreatePromoCodeInput{Code: "X1", DiscountType: "bogo", DiscountValue: money(t, "5")}},
		{name: "zero value", input: CreatePromoCodeInput{Code: "X2", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "0")}},
		{name: "percentage over 100", input: CreatePromoCodeInput{Code: "X3", DiscountType: constants.PromoTypePercentage, DiscountValue: money(t, "120")}},
		{name: "negative minimum", input: CreatePromoCodeInput{Code: "X4", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5"), MinimumOrder: money(t, "-1")}},
		{name: "negative usage limit", input: CreatePromoCodeInput{Code: "X5", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5"), UsageLimit: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(tc.input); !errors.Is(err, ErrPromoInvalid) {
				t.Fatalf("want ErrPromoInvalid got %v", err)
			}
		})
	}
}

func TestPromoAdminCreateInactivePersisted(t *testing.T) {
	svc, db := setupPromoAdminServiceTest(t)
	inactive := false

	created, err := svc.Create(CreatePromoCodeInput{
		Code:          "DRAFT10",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "10"),
		IsActive:      &inactive,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.IsActive {
		t.Fatalf("promo created inactive should stay inactive")
	}
	var stored models.PromoCode
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("is_active=false must be persisted, database row is active")
	}

	// 创建即停用的优惠码不可被校验通过
	promoSvc := NewPromoService(
		repository.NewPromoCodeRepository(db),
		repository.NewPromoCodeUsageRepository(db),
	)
	if _, _, err := promoSvc.Validate("DRAFT10", money(t, "100")); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("inactive promo want ErrPromoNotFound got %v", err)
	}
}

func TestPromoAdminListReturnsAll(t *testing.T) {
	svc, _ := setupPromoAdminServiceTest(t)
	for i := 1; i <= 25; i++ {
		if _, err := svc.Create(CreatePromoCodeInput{
			Code:          fmt.Sprintf("BULK%02d", i),
			DiscountType:  constants.PromoTypeFixed,
			DiscountValue: money(t, "5"),
		}); err != nil {
			t.Fatalf("create BULK%02d failed: %v", i, err)
		}
	}

	// 空过滤条件整表返回，按创建顺序倒序
	promos, total, err := svc.List(repository.PromoCodeListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 25 || len(promos) != 25 {
		t.Fatalf("list want all 25 promos got total=%d len=%d", total, len(promos))
	}
	if promos[0].Code != "BULK25" || promos[24].Code != "BULK01" {
		t.Fatalf("list should be newest first, got %s .. %s", promos[0].Code, promos[24].Code)
	}
}

func TestPromoAdminUpdateKeepsCodeAndUsage(t *testing.T) {
	svc, db := setupPromoAdminServiceTest(t)
	created, err := svc.Create(CreatePromoCodeInput{
		Code:          "KEEPME",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
		UsageLimit:    10,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Model(&models.PromoCode{}).Where("id = ?", created.ID).UpdateColumn("used_count", 3).Error; err != nil {
		t.Fatalf("seed used_count failed: %v", err)
	}

	inactive := false
	updated, err := svc.Update(created.ID, UpdatePromoCodeInput{
		DiscountValue: money(t, "8"),
		UsageLimit:    20,
		IsActive:      &inactive,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Code != "KEEPME" {
		t.Fatalf("code must not change, got %s", updated.Code)
	}
	if updated.UsedCount != 3 {
		t.Fatalf("used_count must not change, got %d", updated.UsedCount)
	}
	if updated.DiscountValue.String() != "8.00" || updated.UsageLimit != 20 || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.Update(9999, UpdatePromoCodeInput{DiscountValue: money(t, "8")}); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("missing promo want ErrPromoNotFound got %v", err)
	}
}

func TestPromoAdminDeactivateIdempotent(t *testing.T) {
	svc, _ := setupPromoAdminServiceTest(t)
	created, err := svc.Create(CreatePromoCodeInput{
		Code:          "STOPME",
		DiscountType:  constants.PromoTypeFixed,
		DiscountValue: money(t, "5"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Deactivate(created.ID)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if first.IsActive {
		t.Fatalf("promo should be inactive after deactivate")
	}
	second, err := svc.Deactivate(created.ID)
	if err != nil {
		t.Fatalf("repeated deactivate failed: %v", err)
	}
	if second.IsActive {
		t.Fatalf("repeated deactivate should stay inactive")
	}
}

func TestPromoAdminDeactivateExpired(t *testing.T) {
	svc, _ := setupPromoAdminServiceTest(t)
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if _, err := svc.Create(CreatePromoCodeInput{Code: "OLD1", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5"), ExpiresAt: &past}); err != nil {
		t.Fatalf("create OLD1 failed: %v", err)
	}
	if _, err := svc.Create(CreatePromoCodeInput{Code: "OLD2", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5"), ExpiresAt: &past}); err != nil {
		t.Fatalf("create OLD2 failed: %v", err)
	}
	if _, err := svc.Create(CreatePromoCodeInput{Code: "FRESH", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5"), ExpiresAt: &future}); err != nil {
		t.Fatalf("create FRESH failed: %v", err)
	}
	if _, err := svc.Create(CreatePromoCodeInput{Code: "FOREVER", DiscountType: constants.PromoTypeFixed, DiscountValue: money(t, "5")}); err != nil {
		t.Fatalf("create FOREVER failed: %v", err)
	}

	count, err := svc.DeactivateExpired(now)
	if err != nil {
		t.Fatalf("deactivate expired failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("deactivated count want 2 got %d", count)
	}

	active := true
	remaining, total, err := svc.List(repository.PromoCodeListFilter{IsActive: &active})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(remaining) != 2 {
		t.Fatalf("active promos want 2 got total=%d len=%d", total, len(remaining))
	}

	// 再次清理应无事可做
	count, err = svc.DeactivateExpired(now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("second sweep want 0 got %d", count)
	}
}
