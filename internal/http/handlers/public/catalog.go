package public

import (
	"strconv"
	"strings"

	handlershared "github.com/threaded-treasure/internal/http/handlers/shared"
	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/repository"

	"github.com/gin-gonic/gin"
)

const catalogDefaultPageSize = 20

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load categories", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表（仅上架商品）
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c, catalogDefaultPageSize)

	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		OnlyActive:   true,
		WithCategory: true,
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load products", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 获取商品详情，路径参数支持数字 ID 或 slug
func (h *Handler) GetProduct(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
		product, err := h.ProductService.GetActiveByID(uint(id))
		if err != nil {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		response.Success(c, product)
		return
	}

	product, err := h.ProductService.GetActiveBySlug(raw)
	if err != nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}
	response.Success(c, product)
}
