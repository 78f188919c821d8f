package mxm

import "time"

// Feedback 反馈记录。ID 和 CreatedAt 由数据库生成，不接受客户端传入
type Feedback struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	Email     *string   `gorm:"column:email" json:"email"`
	Message   string    `gorm:"column:message" json:"message"`
	Rating    *int      `gorm:"column:rating" json:"rating"`
	CreatedAt time.Time `gorm:"column:createdAt;<-:false" json:"createdAt"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// FeedbackInput 客户端提交的反馈内容
type FeedbackInput struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Message string  `json:"message"`
	Rating  *int    `json:"rating,omitempty"`
}

// ToFeedback 生成待插入的记录，空邮箱和 0 分存为 NULL
func (in FeedbackInput) ToFeedback() *Feedback {
	fb := &Feedback{
		Name:    in.Name,
		Message: in.Message,
	}
	if in.Email != nil && *in.Email != "" {
		email := *in.Email
		fb.Email = &email
	}
	if in.Rating != nil && *in.Rating != 0 {
		rating := *in.Rating
		fb.Rating = &rating
	}
	return fb
}
