package model

import "time"

type SessionStatus string

const (
	SessionStarted    SessionStatus = "STARTED"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionTerminated SessionStatus = "TERMINATED"
	SessionExpired    SessionStatus = "EXPIRED"
)

// ActiveSessionStatuses 活跃状态集合，终态之外的状态
var ActiveSessionStatuses = []SessionStatus{SessionStarted, SessionInProgress}

// QuizSession 学生答题会话。作弊信号与终态留作审计记录，永不删除，
// 因此不带软删除字段。(quiz_id, student_id) 唯一约束保证单次应试。
// swagger:model QuizSession
type QuizSession struct {
	ID                uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID            uint          `gorm:"uniqueIndex:uk_quiz_student;not null" json:"quizId"`
	StudentID         uint          `gorm:"uniqueIndex:uk_quiz_student;not null" json:"studentId"`
	SessionToken      string        `gorm:"size:64;uniqueIndex;not null" json:"sessionToken"`
	SessionStatus     SessionStatus `gorm:"size:20;not null;default:'STARTED'" json:"sessionStatus"`
	StartTime         time.Time     `gorm:"not null;index" json:"startTime"`
	EndTime           *time.Time    `json:"endTime,omitempty"`
	TabSwitchCount    int           `gorm:"default:0" json:"tabSwitchCount"`
	ViolationCount    int           `gorm:"default:0" json:"violationCount"` // 开发者工具、复制粘贴等违规次数
	WarningCount      int           `gorm:"default:0" json:"warningCount"`
	IsForceTerminated bool          `gorm:"default:false" json:"isForceTerminated"`
	TerminationReason string        `gorm:"size:255" json:"terminationReason,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// IsActive 会话未进入终态
func (s *QuizSession) IsActive() bool {
	return s.SessionStatus == SessionStarted || s.SessionStatus == SessionInProgress
}

// IsTerminal 终态不可再变更
func (s *QuizSession) IsTerminal() bool {
	return !s.IsActive()
}
