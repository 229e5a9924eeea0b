package model

import "time"

// swagger:model Quiz
type Quiz struct {
	BaseModel
	ClassroomID      uint      `gorm:"index;not null" json:"classroomId"`
	CreatorID        uint      `gorm:"index;not null" json:"creatorId"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	StartTime        time.Time `gorm:"not null" json:"startTime"`
	EndTime          time.Time `gorm:"not null" json:"endTime"`
	TimeLimitMinutes int       `gorm:"default:0" json:"timeLimitMinutes"` // 0 表示只受全局时间窗限制
}

func (Quiz) TableName() string {
	return "quizzes"
}

// IsNotStarted 测验尚未开始
func (q *Quiz) IsNotStarted(now time.Time) bool {
	return now.Before(q.StartTime)
}

// IsEnded 测验已结束
func (q *Quiz) IsEnded(now time.Time) bool {
	return now.After(q.EndTime)
}

// IsActive 测验处于开放时间窗内
func (q *Quiz) IsActive(now time.Time) bool {
	return !q.IsNotStarted(now) && !q.IsEnded(now)
}

type QuizStatus string

const (
	QuizNotStarted QuizStatus = "NOT_STARTED"
	QuizActive     QuizStatus = "ACTIVE"
	QuizEnded      QuizStatus = "ENDED"
)

// Status 当前时刻的测验状态
func (q *Quiz) Status(now time.Time) QuizStatus {
	switch {
	case q.IsNotStarted(now):
		return QuizNotStarted
	case q.IsEnded(now):
		return QuizEnded
	default:
		return QuizActive
	}
}
