package mxm

// Stats 全部反馈的统计快照。3 分既不算好评也不算差评
type Stats struct {
	Total     int64   `gorm:"column:total" json:"total"`
	AvgRating float64 `gorm:"column:avg_rating" json:"avgRating"`
	Positive  int64   `gorm:"column:positive" json:"positive"`
	Negative  int64   `gorm:"column:negative" json:"negative"`
}

const (
	PositiveMinRating = 4
	NegativeMaxRating = 3 //不含
)

// IsPositive reports whether r falls in the positive bucket.
func IsPositive(r int) bool { return r >= PositiveMinRating }

// IsNegative reports whether r falls in the negative bucket.
func IsNegative(r int) bool { return r < NegativeMaxRating }

// ComputeStats 内存统计，规则与 SQL 查询一致
func ComputeStats(records []*Feedback) Stats {
	var (
		st    Stats
		sum   int64
		rated int64
	)
	for _, r := range records {
		st.Total++
		if r.Rating == nil {
			continue
		}
		rated++
		sum += int64(*r.Rating)
		if IsPositive(*r.Rating) {
			st.Positive++
		}
		if IsNegative(*r.Rating) {
			st.Negative++
		}
	}
	if rated > 0 {
		st.AvgRating = float64(sum) / float64(rated)
	}
	return st
}
