package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/threaded-treasure/internal/http/handlers/shared"
	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/service"

	"github.com/gin-gonic/gin"
)

// ModerateReviewRequest 评价审核请求
type ModerateReviewRequest struct {
	Action string `json:"action" binding:"required"`
}

// GetAdminReviews 获取评价列表
// status 支持 approved/pending，其余取值返回全部。
func (h *Handler) GetAdminReviews(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c, adminDefaultPageSize)
	status := strings.TrimSpace(c.Query("status"))

	reviews, total, err := h.ReviewAdminService.List(status, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load reviews", err)
		return
	}
	response.SuccessWithPage(c, reviews, response.NewPagination(page, pageSize, total))
}

// ModerateReview 审核评价（approve/reject）
func (h *Handler) ModerateReview(c *gin.Context) {
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		respondError(c, response.CodeBadRequest, "invalid review id", err)
		return
	}
	var req ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "action is required", err)
		return
	}

	if err := h.ReviewAdminService.Moderate(uint(reviewID), req.Action); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewActionInvalid):
			respondError(c, response.CodeBadRequest, "action must be approve or reject", nil)
		case errors.Is(err, service.ErrReviewNotFound):
			respondError(c, response.CodeNotFound, "review not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to moderate review", err)
		}
		return
	}
	response.SuccessWithMsg(c, "review moderated", nil)
}
