package service

import (
	"strings"

	"github.com/threaded-treasure/internal/constants"
	"github.com/threaded-treasure/internal/models"
	"github.com/threaded-treasure/internal/repository"
)

// ReviewAdminService 评价审核服务
type ReviewAdminService struct {
	repo repository.ReviewRepository
}

// NewReviewAdminService 创建评价审核服务
func NewReviewAdminService(repo repository.ReviewRepository) *ReviewAdminService {
	return &ReviewAdminService{repo: repo}
}

// List 获取评价列表
// status 为 approved/pending 时按审核状态过滤，其他取值返回全部。
func (s *ReviewAdminService) List(status string, page, pageSize int) ([]models.Review, int64, error) {
	filter := repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.ReviewStatusApproved:
		approved := true
		filter.IsApproved = &approved
	case constants.ReviewStatusPending:
		approved := false
		filter.IsApproved = &approved
	}
	return s.repo.List(filter)
}

// Moderate 审核评价
// action 仅接受 approve/reject，评价不存在时返回 ErrReviewNotFound。
func (s *ReviewAdminService) Moderate(reviewID uint, action string) error {
	if reviewID == 0 {
		return ErrReviewNotFound
	}
	var approved bool
	switch strings.ToLower(strings.TrimSpace(action)) {
	case constants.ReviewModerateActionApprove:
		approved = true
	case constants.ReviewModerateActionReject:
		approved = false
	default:
		return ErrReviewActionInvalid
	}

	affected, err := s.repo.SetApproval(reviewID, approved)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
