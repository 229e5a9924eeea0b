package repository

import (
	"classhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizSessionRepository struct {
	DB *gorm.DB
}

func NewQuizSessionRepository(db *gorm.DB) *QuizSessionRepository {
	return &QuizSessionRepository{DB: db}
}

// Create 依赖 (quiz_id, student_id) 唯一索引做原子的 insert-if-absent，
// 并发重复创建由数据库拒绝，调用方负责归类唯一键冲突。
func (r *QuizSessionRepository) Create(session *model.QuizSession) error {
	return r.DB.Create(session).Error
}

func (r *QuizSessionRepository) FindByToken(token string) (*model.QuizSession, error) {
	var session model.QuizSession
	if err := r.DB.Where("session_token = ?", token).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *QuizSessionRepository) FindByQuizAndStudent(quizID, studentID uint) (*model.QuizSession, error) {
	var session model.QuizSession
	if err := r.DB.Where("quiz_id = ? AND student_id = ?", quizID, studentID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *QuizSessionRepository) ExistsByQuizAndStudent(quizID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizSession{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count > 0, err
}

// UpdateIfActive 条件更新：仅当会话仍处于活跃状态时生效，
// 返回受影响行数。终态会话不会被改写，竞争中先到的终态转换获胜。
func (r *QuizSessionRepository) UpdateIfActive(token string, updates map[string]interface{}) (int64, error) {
	result := r.DB.Model(&model.QuizSession{}).
		Where("session_token = ? AND session_status IN ?", token, model.ActiveSessionStatuses).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// IncrementIfActive 单语句自增计数器，保证多实例并发下不丢失计数
func (r *QuizSessionRepository) IncrementIfActive(token string, column string) (int64, error) {
	result := r.DB.Model(&model.QuizSession{}).
		Where("session_token = ? AND session_status IN ?", token, model.ActiveSessionStatuses).
		Update(column, gorm.Expr(column+" + 1"))
	return result.RowsAffected, result.Error
}

// FindStale 查找开始时间早于 cutoff 且仍活跃的会话
func (r *QuizSessionRepository) FindStale(cutoff time.Time) ([]model.QuizSession, error) {
	var sessions []model.QuizSession
	err := r.DB.Where("session_status IN ? AND start_time < ?", model.ActiveSessionStatuses, cutoff).
		Find(&sessions).Error
	return sessions, err
}

// ExpireSessions 批量置为 EXPIRED。WHERE 中再次检查活跃状态，
// 避免把刚刚正常完成的会话改成过期。
func (r *QuizSessionRepository) ExpireSessions(ids []uint, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.DB.Model(&model.QuizSession{}).
		Where("id IN ? AND session_status IN ?", ids, model.ActiveSessionStatuses).
		Updates(map[string]interface{}{
			"session_status": model.SessionExpired,
			"end_time":       now,
		})
	return result.RowsAffected, result.Error
}
