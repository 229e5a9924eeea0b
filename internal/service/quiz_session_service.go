package service

import (
	"classhub_backend/internal/config"
	"classhub_backend/internal/model"
	"classhub_backend/internal/repository"
	"classhub_backend/internal/util"
	"classhub_backend/pkg/logger"
	"classhub_backend/pkg/monitoring"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizSessionService 管理学生答题会话的状态机：
// STARTED → IN_PROGRESS → COMPLETED / TERMINATED / EXPIRED。
// 终态不可逆，(quiz, student) 终身至多一条会话记录。
type QuizSessionService struct {
	Repo *repository.QuizSessionRepository

	mu     sync.RWMutex
	limits config.QuizConfig
}

func NewQuizSessionService(repo *repository.QuizSessionRepository, cfg *config.Config) *QuizSessionService {
	return &QuizSessionService{
		Repo:   repo,
		limits: cfg.Quiz,
	}
}

// ApplyConfig 配置热加载回调，运行时调整阈值与清扫参数
func (s *QuizSessionService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.limits = cfg.Quiz
	s.mu.Unlock()
}

func (s *QuizSessionService) currentLimits() config.QuizConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// StartSession 开始答题会话。已有活跃会话或已消耗应试资格都会被拒绝。
// 竞态下的重复创建由 (quiz_id, student_id) 唯一索引兜底，
// 冲突后重读记录归类为对应的业务错误。
func (s *QuizSessionService) StartSession(quizID, studentID uint) (*model.QuizSession, error) {
	existing, err := s.Repo.FindByQuizAndStudent(quizID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, classifyExisting(existing)
	}

	session := &model.QuizSession{
		QuizID:        quizID,
		StudentID:     studentID,
		SessionToken:  model.GenerateToken(),
		SessionStatus: model.SessionStarted,
		StartTime:     time.Now(),
	}

	if err := s.Repo.Create(session); err != nil {
		// 唯一键冲突：并发的另一次 start 先赢了，按现存记录归类
		if raced, findErr := s.Repo.FindByQuizAndStudent(quizID, studentID); findErr == nil {
			return nil, classifyExisting(raced)
		}
		return nil, err
	}

	monitoring.QuizSessionTransitions.WithLabelValues(string(model.SessionStarted)).Inc()
	logger.Log.Info("Quiz session started",
		zap.String("token", session.SessionToken),
		zap.Uint("quizId", quizID),
		zap.Uint("studentId", studentID))
	return session, nil
}

func classifyExisting(session *model.QuizSession) error {
	if session.IsActive() {
		return util.ErrAlreadyActiveSession
	}
	return util.ErrAttemptConsumed
}

// MarkInProgress 客户端上报进入答题，advisory 性质，可重复调用
func (s *QuizSessionService) MarkInProgress(token string) error {
	rows, err := s.Repo.UpdateIfActive(token, map[string]interface{}{
		"session_status": model.SessionInProgress,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyMiss(token, "")
	}
	monitoring.QuizSessionTransitions.WithLabelValues(string(model.SessionInProgress)).Inc()
	return nil
}

// RecordTabSwitch 记录标签页切换，达到阈值时自动强制终止
func (s *QuizSessionService) RecordTabSwitch(token string) (*model.QuizSession, error) {
	return s.recordSignal(token, "tab_switch_count", "tab_switch")
}

// RecordViolation 记录违规行为（开发者工具、复制粘贴等）
func (s *QuizSessionService) RecordViolation(token string) (*model.QuizSession, error) {
	return s.recordSignal(token, "violation_count", "violation")
}

// RecordWarning 记录警告
func (s *QuizSessionService) RecordWarning(token string) (*model.QuizSession, error) {
	return s.recordSignal(token, "warning_count", "warning")
}

// recordSignal 自增计数后立即评估强制终止策略。
// 自增与终止都是针对活跃状态的条件更新，输给并发终态转换时不会复活会话。
func (s *QuizSessionService) recordSignal(token, column, signal string) (*model.QuizSession, error) {
	rows, err := s.Repo.IncrementIfActive(token, column)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.classifyMiss(token, "")
	}
	monitoring.QuizSessionViolations.WithLabelValues(signal).Inc()

	session, err := s.Repo.FindByToken(token)
	if err != nil {
		return nil, err
	}

	if reason := s.terminationReason(session); reason != "" && session.IsActive() {
		if err := s.TerminateSession(token, reason); err != nil {
			return nil, err
		}
		return s.Repo.FindByToken(token)
	}
	return session, nil
}

// terminationReason 任一信号达到阈值即触发，阈值相互独立
func (s *QuizSessionService) terminationReason(session *model.QuizSession) string {
	limits := s.currentLimits()
	switch {
	case session.TabSwitchCount >= limits.TabSwitchLimit:
		return fmt.Sprintf("tab switch limit exceeded (%d)", session.TabSwitchCount)
	case session.ViolationCount >= limits.ViolationLimit:
		return fmt.Sprintf("violation limit exceeded (%d)", session.ViolationCount)
	case session.WarningCount >= limits.WarningLimit:
		return fmt.Sprintf("warning limit exceeded (%d)", session.WarningCount)
	}
	return ""
}

// CompleteSession 正常完成。对已完成会话重复调用视为成功，
// 其余终态返回 ErrSessionNotActive。
func (s *QuizSessionService) CompleteSession(token string) error {
	rows, err := s.Repo.UpdateIfActive(token, map[string]interface{}{
		"session_status": model.SessionCompleted,
		"end_time":       time.Now(),
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyMiss(token, model.SessionCompleted)
	}
	monitoring.QuizSessionTransitions.WithLabelValues(string(model.SessionCompleted)).Inc()
	logger.Log.Info("Quiz session completed", zap.String("token", token))
	return nil
}

// TerminateSession 强制终止并记录原因
func (s *QuizSessionService) TerminateSession(token, reason string) error {
	rows, err := s.Repo.UpdateIfActive(token, map[string]interface{}{
		"session_status":      model.SessionTerminated,
		"end_time":            time.Now(),
		"is_force_terminated": true,
		"termination_reason":  reason,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.classifyMiss(token, model.SessionTerminated)
	}
	monitoring.QuizSessionTransitions.WithLabelValues(string(model.SessionTerminated)).Inc()
	logger.Log.Warn("Quiz session terminated",
		zap.String("token", token),
		zap.String("reason", reason))
	return nil
}

// classifyMiss 条件更新未命中任何行：会话不存在、或已进入终态。
// idempotentOn 非空时，对该终态的重复调用按成功处理。
func (s *QuizSessionService) classifyMiss(token string, idempotentOn model.SessionStatus) error {
	session, err := s.Repo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSessionNotFound
		}
		return err
	}
	if idempotentOn != "" && session.SessionStatus == idempotentOn {
		return nil
	}
	return util.ErrSessionNotActive
}

// IsSessionValid 供客户端轮询，永不报错
func (s *QuizSessionService) IsSessionValid(token string) bool {
	session, err := s.Repo.FindByToken(token)
	if err != nil {
		return false
	}
	return session.IsActive()
}

// GetSessionInfo 查询会话记录
func (s *QuizSessionService) GetSessionInfo(token string) (*model.QuizSession, error) {
	session, err := s.Repo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// CanRetake 单次应试模型：只要存在任何会话记录即不可再应试
func (s *QuizSessionService) CanRetake(quizID, studentID uint) (bool, error) {
	exists, err := s.Repo.ExistsByQuizAndStudent(quizID, studentID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CleanupExpiredSessions 清扫被放弃的会话：开始时间超过 stale 阈值
// 仍处于活跃状态的批量置为 EXPIRED。尽力而为，单次失败不影响下个周期。
func (s *QuizSessionService) CleanupExpiredSessions() error {
	limits := s.currentLimits()
	cutoff := time.Now().Add(-time.Duration(limits.SessionStaleHours) * time.Hour)

	stale, err := s.Repo.FindStale(cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(stale))
	for _, session := range stale {
		ids = append(ids, session.ID)
	}

	expired, err := s.Repo.ExpireSessions(ids, time.Now())
	if err != nil {
		return err
	}

	monitoring.QuizSweepReclaimed.Add(float64(expired))
	monitoring.QuizSessionTransitions.WithLabelValues(string(model.SessionExpired)).Add(float64(expired))
	logger.Log.Info("Expired quiz sessions", zap.Int64("count", expired))
	return nil
}
