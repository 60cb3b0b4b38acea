package main

import (
	"fmt"
	"time"

	"github.com/threaded-treasure/internal/config"
	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/logger"
	"github.com/threaded-treasure/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "tops", Name: "Tops", Description: "T-shirts, shirts and blouses", SortOrder: 400},
		{Slug: "bottoms", Name: "Bottoms", Description: "Jeans, trousers and skirts", SortOrder: 300},
		{Slug: "outerwear", Name: "Outerwear", Description: "Jackets, coats and knitwear", SortOrder: 200},
		{Slug: "accessories", Name: "Accessories", Description: "Scarves, belts and bags", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"tops", "bottoms", "outerwear", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID:  categoryIDs["tops"],
			Slug:        "organic-cotton-tee",
			Name:        "Organic Cotton Tee",
			Description: "Relaxed-fit tee in heavyweight organic cotton. Pre-shrunk and garment dyed.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(24.90)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800",
			}),
			Stock:     120,
			IsActive:  true,
			SortOrder: 400,
		},
		{
			CategoryID:  categoryIDs["tops"],
			Slug:        "linen-camp-shirt",
			Name:        "Linen Camp Shirt",
			Description: "Breathable linen shirt with a camp collar, perfect for warm weather.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(59.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1596755094514-f87e34085b2c?w=800",
			}),
			Stock:     60,
			IsActive:  true,
			SortOrder: 380,
		},
		{
			CategoryID:  categoryIDs["bottoms"],
			Slug:        "selvedge-denim-jeans",
			Name:        "Selvedge Denim Jeans",
			Description: "14oz Japanese selvedge denim with a tapered leg. Raw and unwashed.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(148.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1542272604-787c3835535d?w=800",
			}),
			Stock:     45,
			IsActive:  true,
			SortOrder: 360,
		},
		{
			CategoryID:  categoryIDs["outerwear"],
			Slug:        "wool-overshirt",
			Name:        "Wool Overshirt",
			Description: "Midweight brushed wool overshirt. Works as a shirt or a light jacket.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(128.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1591047139829-d91aecb6caea?w=800",
			}),
			Stock:     30,
			IsActive:  true,
			SortOrder: 340,
		},
		{
			CategoryID:  categoryIDs["outerwear"],
			Slug:        "waxed-canvas-jacket",
			Name:        "Waxed Canvas Jacket",
			Description: "Weather-resistant waxed canvas with corduroy collar and brass hardware.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(189.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1551028719-00167b16eac5?w=800",
			}),
			Stock:     18,
			IsActive:  true,
			SortOrder: 320,
		},
		{
			CategoryID:  categoryIDs["accessories"],
			Slug:        "leather-belt",
			Name:        "Full-Grain Leather Belt",
			Description: "Vegetable-tanned leather belt that develops a patina with wear.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(45.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1624222247344-550fb60583dc?w=800",
			}),
			Stock:     80,
			IsActive:  true,
			SortOrder: 300,
		},
		{
			CategoryID:  categoryIDs["accessories"],
			Slug:        "merino-beanie",
			Name:        "Merino Wool Beanie",
			Description: "Soft merino beanie, knitted in a classic rib. One size fits most.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1576871337622-98d48d1cf531?w=800",
			}),
			Stock:     0,
			IsActive:  true,
			SortOrder: 280,
		},
		{
			CategoryID:  categoryIDs["bottoms"],
			Slug:        "pleated-wool-trousers",
			Name:        "Pleated Wool Trousers",
			Description: "Drapey wool trousers with a single pleat and a relaxed taper.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(118.00)),
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1594633312681-425c7b97ccd1?w=800",
			}),
			Stock:     25,
			IsActive:  false,
			SortOrder: 260,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Price = prod.Price
			existing.CategoryID = prod.CategoryID
			existing.Images = prod.Images
			existing.Stock = prod.Stock
			existing.IsActive = prod.IsActive
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	// 添加优惠码
	welcomeExpires := time.Now().AddDate(0, 3, 0)
	flashExpires := time.Now().AddDate(0, 0, 7)
	promoCodes := []models.PromoCode{
		{
			Code:            "WELCOME10",
			DiscountType:    constants.PromoTypePercentage,
			DiscountValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinimumOrder:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			MaximumDiscount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			UsageLimit:      0,
			ExpiresAt:       &welcomeExpires,
			IsActive:        true,
		},
		{
			Code:            "FLASH25",
			DiscountType:    constants.PromoTypeFixed,
			DiscountValue:   models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
			MinimumOrder:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MaximumDiscount: models.Money{},
			UsageLimit:      200,
			ExpiresAt:       &flashExpires,
			IsActive:        true,
		},
	}

	for _, promo := range promoCodes {
		var existing models.PromoCode
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promo code: %s", promo.Code)
			}
		} else {
			stdLog.Printf("Promo code already exists: %s", promo.Code)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 4 Categories")
	fmt.Println("- 8 Products")
	fmt.Println("- 2 Promo codes (WELCOME10, FLASH25)")
}
