package model

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
)

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID        uint         `gorm:"index;not null" json:"quizId"`
	QuestionText  string       `gorm:"type:text;not null" json:"questionText"`
	QuestionType  QuestionType `gorm:"size:20;not null" json:"questionType"`
	Options       string       `gorm:"type:json" json:"options"` // 选项序列化 JSON，仅客观题使用
	CorrectAnswer string       `gorm:"type:text;not null" json:"correctAnswer"`
	Points        int          `gorm:"not null" json:"points"`
	OrderIndex    int          `gorm:"not null" json:"orderIndex"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
