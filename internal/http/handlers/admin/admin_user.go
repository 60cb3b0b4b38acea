package admin

import (
	"strconv"
	"strings"

	"github.com/threaded-treasure/internal/constants"
	handlershared "github.com/threaded-treasure/internal/http/handlers/shared"
	"github.com/threaded-treasure/internal/http/response"
	"github.com/threaded-treasure/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 用户状态变更请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 获取用户列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c, adminDefaultPageSize)

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load users", err)
		return
	}

	views := make([]gin.H, 0, len(users))
	for _, user := range users {
		views = append(views, gin.H{
			"id":            user.ID,
			"email":         user.Email,
			"display_name":  user.DisplayName,
			"status":        user.Status,
			"last_login_at": user.LastLoginAt,
			"created_at":    user.CreatedAt,
		})
	}
	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}

// UpdateUserStatus 启用/禁用用户
// 禁用时使该用户现有 token 全部失效。
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", err)
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "status is required", err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "status must be active or disabled", nil)
		return
	}

	user, err := h.UserRepo.GetByID(uint(userID))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus([]uint{uint(userID)}, status); err != nil {
		respondError(c, response.CodeInternal, "failed to update user status", err)
		return
	}
	response.SuccessWithMsg(c, "user status updated", nil)
}
