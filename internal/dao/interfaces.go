package dao

import (
	"context"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
)

// FeedbackRepository 反馈数据访问，没有更新和删除
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *mxm.Feedback) error
	GetFeedbackByID(ctx context.Context, id uint) (*mxm.Feedback, error)
	// GetFeedbacks 获取所有反馈，最新在前
	GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error)
	GetStats(ctx context.Context) (*mxm.Stats, error)
}

// Repository 统一数据访问接口
type Repository interface {
	FeedbackRepository
	Ping(ctx context.Context) error
}
