package dao

import (
	"context"
	"errors"
	"fmt"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row looked up by id does not exist.
var ErrNotFound = errors.New("feedback not found")

const statsSQL = `SELECT
	COUNT(*) AS total,
	COALESCE(AVG(rating), 0) AS avg_rating,
	COALESCE(SUM(CASE WHEN rating >= 4 THEN 1 ELSE 0 END), 0) AS positive,
	COALESCE(SUM(CASE WHEN rating < 3 THEN 1 ELSE 0 END), 0) AS negative
FROM feedbacks`

func (d *MysqlRepository) CreateFeedback(ctx context.Context, feedback *mxm.Feedback) error {
	if err := d.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("create feedback failed: %w", err)
	}
	return nil
}

func (d *MysqlRepository) GetFeedbackByID(ctx context.Context, id uint) (*mxm.Feedback, error) {
	var fb mxm.Feedback
	err := d.db.WithContext(ctx).Where("id = ?", id).Take(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback %d failed: %w", id, err)
	}
	return &fb, nil
}

// GetFeedbacks 获取所有反馈，createdAt 相同时按 id 倒序
func (d *MysqlRepository) GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error) {
	feedbacks := make([]*mxm.Feedback, 0)
	if err := d.db.WithContext(ctx).Order("createdAt DESC").Order("id DESC").
		Find(&feedbacks).Error; err != nil {
		return nil, fmt.Errorf("get feedbacks failed: %w", err)
	}
	return feedbacks, nil
}

func (d *MysqlRepository) GetStats(ctx context.Context) (*mxm.Stats, error) {
	var st mxm.Stats
	if err := d.db.WithContext(ctx).Raw(statsSQL).Scan(&st).Error; err != nil {
		return nil, fmt.Errorf("get stats failed: %w", err)
	}
	return &st, nil
}
