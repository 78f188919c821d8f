package dao

import (
	"context"
	"sort"
	"sync"
	"time"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
)

// MemoryRepository keeps rows in process memory with the same ordering and
// aggregation rules as MysqlRepository.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []mxm.Feedback
	nextID uint
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source, for tests.
func (m *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	m.now = now
	return m
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) CreateFeedback(ctx context.Context, feedback *mxm.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	feedback.ID = m.nextID
	feedback.CreatedAt = m.now()
	m.nextID++
	m.rows = append(m.rows, cloneFeedback(feedback))
	return nil
}

func (m *MemoryRepository) GetFeedbackByID(ctx context.Context, id uint) (*mxm.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.rows {
		if m.rows[i].ID == id {
			fb := cloneFeedback(&m.rows[i])
			return &fb, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]*mxm.Feedback, len(m.rows))
	for i := range m.rows {
		fb := cloneFeedback(&m.rows[i])
		out[i] = &fb
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryRepository) GetStats(ctx context.Context) (*mxm.Stats, error) {
	rows, err := m.GetFeedbacks(ctx)
	if err != nil {
		return nil, err
	}
	st := mxm.ComputeStats(rows)
	return &st, nil
}

func cloneFeedback(f *mxm.Feedback) mxm.Feedback {
	c := *f
	if f.Email != nil {
		e := *f.Email
		c.Email = &e
	}
	if f.Rating != nil {
		r := *f.Rating
		c.Rating = &r
	}
	return c
}

var _ Repository = (*MemoryRepository)(nil)
