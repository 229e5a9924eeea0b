package model

import "time"

// QuizAnswerRecord 学生答案记录。每个 (quiz, student, question) 至多一条，
// 写入时即判分，之后不再修改。
// swagger:model QuizAnswerRecord
type QuizAnswerRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID     uint      `gorm:"uniqueIndex:uk_quiz_student_question;not null" json:"quizId"`
	StudentID  uint      `gorm:"uniqueIndex:uk_quiz_student_question;not null" json:"studentId"`
	QuestionID uint      `gorm:"uniqueIndex:uk_quiz_student_question;not null" json:"questionId"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	IsCorrect  bool      `gorm:"not null" json:"isCorrect"`
	AnsweredAt time.Time `gorm:"autoCreateTime" json:"answeredAt"`
}

func (QuizAnswerRecord) TableName() string {
	return "quiz_answer_records"
}
