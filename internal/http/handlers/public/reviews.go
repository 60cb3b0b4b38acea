package public

import (
	"strconv"

	handlershared "github.com/threaded-treasure/internal/http/handlers/shared"
	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/service"

	"github.com/gin-gonic/gin"
)

const reviewDefaultPageSize = 10

// CreateReviewRequest 创建评价请求
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment" binding:"required"`
}

// UpdateReviewRequest 更新评价请求
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment" binding:"required"`
}

// GetProductReviews 获取商品评价列表与评分统计（仅已审核通过）
func (h *Handler) GetProductReviews(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	page, pageSize := handlershared.ParsePagination(c, reviewDefaultPageSize)

	reviews, total, stats, err := h.ReviewService.ListForProduct(uint(productID), page, pageSize)
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.SuccessWithPage(c, gin.H{"reviews": reviews, "stats": stats}, response.NewPagination(page, pageSize, total))
}

// CheckReviewEligibility 查询当前用户对商品的评价资格
func (h *Handler) CheckReviewEligibility(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	eligibility, err := h.ReviewService.CheckEligibility(userID, uint(productID))
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, eligibility)
}

// CreateReview 创建商品评价
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "rating and comment are required", err)
		return
	}

	review, err := h.ReviewService.Create(service.CreateReviewInput{
		UserID:    userID,
		ProductID: uint(productID),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Created(c, review)
}

// UpdateReview 更新自己的评价
func (h *Handler) UpdateReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		respondError(c, response.CodeBadRequest, "invalid review id", nil)
		return
	}
	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "rating and comment are required", err)
		return
	}

	review, err := h.ReviewService.Update(uint(reviewID), userID, service.UpdateReviewInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, review)
}

// DeleteReview 删除自己的评价
func (h *Handler) DeleteReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		respondError(c, response.CodeBadRequest, "invalid review id", nil)
		return
	}

	if err := h.ReviewService.Delete(uint(reviewID), userID); err != nil {
		respondReviewError(c, err)
		return
	}
	response.SuccessWithMsg(c, "review deleted", nil)
}

// MarkReviewHelpful 评价有用数 +1（无需登录）
func (h *Handler) MarkReviewHelpful(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		respondError(c, response.CodeBadRequest, "invalid review id", nil)
		return
	}

	count, err := h.ReviewService.MarkHelpful(uint(reviewID))
	if err != nil {
		respondReviewError(c, err)
		return
	}
	response.Success(c, gin.H{"helpful_count": count})
}

// GetMyReviews 获取当前用户的全部评价（不过滤审核状态）
func (h *Handler) GetMyReviews(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c, reviewDefaultPageSize)

	reviews, total, err := h.ReviewService.ListForUser(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load reviews", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}
