package service

import (
	"classhub_backend/internal/config"
	"classhub_backend/internal/model"
	"classhub_backend/internal/repository"
	"classhub_backend/internal/util"
	"classhub_backend/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizService 测验编排：试卷 CRUD、提交准入控制、判分落库与成绩查询
type QuizService struct {
	QuizRepo      *repository.QuizRepository
	AnswerRepo    *repository.QuizAnswerRepository
	SessionRepo   *repository.QuizSessionRepository
	UserRepo      *repository.UserRepository
	ClassroomRepo *repository.ClassroomRepository
	Redis         *redis.Client

	mu       sync.RWMutex
	quizConf config.QuizConfig
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	answerRepo *repository.QuizAnswerRepository,
	sessionRepo *repository.QuizSessionRepository,
	userRepo *repository.UserRepository,
	classroomRepo *repository.ClassroomRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *QuizService {
	return &QuizService{
		QuizRepo:      quizRepo,
		AnswerRepo:    answerRepo,
		SessionRepo:   sessionRepo,
		UserRepo:      userRepo,
		ClassroomRepo: classroomRepo,
		Redis:         rdb,
		quizConf:      cfg.Quiz,
	}
}

// ApplyConfig 配置热加载回调，运行时调整状态缓存 TTL
func (s *QuizService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.quizConf = cfg.Quiz
	s.mu.Unlock()
}

func (s *QuizService) statusCacheTTL() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.quizConf.StatusCacheSeconds) * time.Second
}

type QuestionReq struct {
	QuestionText  string             `json:"questionText" binding:"required"`
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Options       string             `json:"options"`
	CorrectAnswer string             `json:"correctAnswer" binding:"required"`
	Points        int                `json:"points"`
	OrderIndex    int                `json:"orderIndex"`
}

type QuizReq struct {
	Title            string        `json:"title" binding:"required"`
	Description      string        `json:"description"`
	StartTime        time.Time     `json:"startTime" binding:"required"`
	EndTime          time.Time     `json:"endTime" binding:"required"`
	TimeLimitMinutes int           `json:"timeLimitMinutes"`
	Questions        []QuestionReq `json:"questions"`
}

type QuizSubmitReq struct {
	Answers []AnswerSubmission `json:"answers" binding:"required"`
}

// QuizResponse 列表与详情共用的试卷视图，附带统计信息
type QuizResponse struct {
	model.Quiz
	CreatorName      string           `json:"creatorName"`
	TotalQuestions   int              `json:"totalQuestions"`
	TotalPoints      int              `json:"totalPoints"`
	ParticipantCount int64            `json:"participantCount"`
	Status           model.QuizStatus `json:"status"`
	HasSubmitted     bool             `json:"hasSubmitted"`
}

// QuestionView 发给客户端的题目视图，答题期间对学生隐藏标准答案
type QuestionView struct {
	ID            uint               `json:"id"`
	QuizID        uint               `json:"quizId"`
	QuestionText  string             `json:"questionText"`
	QuestionType  model.QuestionType `json:"questionType"`
	Options       string             `json:"options"`
	CorrectAnswer string             `json:"correctAnswer,omitempty"`
	Points        int                `json:"points"`
	OrderIndex    int                `json:"orderIndex"`
}

type QuizDetailResponse struct {
	QuizResponse
	Questions []QuestionView `json:"questions,omitempty"`
}

type QuizStatusResponse struct {
	QuizID       uint             `json:"quizId"`
	Status       model.QuizStatus `json:"status"`
	HasSubmitted bool             `json:"hasSubmitted"`
	CanTake      bool             `json:"canTake"`
}

// CreateQuiz 仅教育者可创建，开始时间必须早于结束时间
func (s *QuizService) CreateQuiz(classroomID uint, req QuizReq, creatorID uint) (*QuizResponse, error) {
	creator, err := s.validateEducator(creatorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ClassroomRepo.FindByID(classroomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrClassroomNotFound
		}
		return nil, err
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, util.ErrInvalidQuizTimes
	}

	quiz := &model.Quiz{
		ClassroomID:      classroomID,
		CreatorID:        creatorID,
		Title:            req.Title,
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		TimeLimitMinutes: req.TimeLimitMinutes,
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}

	if len(req.Questions) > 0 {
		if err := s.QuizRepo.CreateQuestions(buildQuestions(quiz.ID, req.Questions)); err != nil {
			return nil, err
		}
	}

	logger.Log.Info("Quiz created",
		zap.Uint("quizId", quiz.ID),
		zap.Uint("classroomId", classroomID),
		zap.Uint("creatorId", creatorID))
	return s.decorate(quiz, creator, creator)
}

func buildQuestions(quizID uint, reqs []QuestionReq) []model.QuizQuestion {
	questions := make([]model.QuizQuestion, 0, len(reqs))
	for _, q := range reqs {
		options := q.Options
		if q.QuestionType != model.MultipleChoice {
			options = ""
		}
		questions = append(questions, model.QuizQuestion{
			QuizID:        quizID,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			OrderIndex:    q.OrderIndex,
		})
	}
	return questions
}

// GetQuizzes 班级内试卷列表，按创建时间倒序
func (s *QuizService) GetQuizzes(classroomID, userID uint) ([]QuizResponse, error) {
	user, err := s.validateUserExists(userID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.QuizRepo.FindByClassroom(classroomID)
	if err != nil {
		return nil, err
	}

	responses := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		creator, _ := s.UserRepo.FindByID(quizzes[i].CreatorID)
		resp, err := s.decorate(&quizzes[i], creator, user)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// GetQuizDetail 试卷详情。教育者看到完整题目；学生仅在开放期间
// 看到隐藏答案的题目，结束后不再返回题目。
func (s *QuizService) GetQuizDetail(classroomID, quizID, userID uint) (*QuizDetailResponse, error) {
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	user, err := s.validateUserExists(userID)
	if err != nil {
		return nil, err
	}

	creator, _ := s.UserRepo.FindByID(quiz.CreatorID)
	base, err := s.decorate(quiz, creator, user)
	if err != nil {
		return nil, err
	}

	detail := &QuizDetailResponse{QuizResponse: *base}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch {
	case user.IsEducator():
		detail.Questions = buildQuestionViews(questions, true)
	case quiz.IsActive(now):
		detail.Questions = buildQuestionViews(questions, false)
	}
	return detail, nil
}

func buildQuestionViews(questions []model.QuizQuestion, withAnswer bool) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			ID:           q.ID,
			QuizID:       q.QuizID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Options:      q.Options,
			Points:       q.Points,
			OrderIndex:   q.OrderIndex,
		}
		if withAnswer {
			view.CorrectAnswer = q.CorrectAnswer
		}
		views = append(views, view)
	}
	return views
}

// UpdateQuiz 仅创建者可修改；传入题目时整体替换
func (s *QuizService) UpdateQuiz(classroomID, quizID uint, req QuizReq, userID uint) (*QuizResponse, error) {
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != userID {
		return nil, util.ErrPermissionDenied
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, util.ErrInvalidQuizTimes
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.StartTime = req.StartTime
	quiz.EndTime = req.EndTime
	quiz.TimeLimitMinutes = req.TimeLimitMinutes

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if err := s.QuizRepo.ReplaceQuestions(quizID, buildQuestions(quizID, req.Questions)); err != nil {
			return nil, err
		}
	}

	creator, _ := s.UserRepo.FindByID(quiz.CreatorID)
	return s.decorate(quiz, creator, creator)
}

// DeleteQuiz 仅创建者可删除，级联删除题目与答案记录
func (s *QuizService) DeleteQuiz(classroomID, quizID, userID uint) error {
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != userID {
		return util.ErrPermissionDenied
	}
	return s.QuizRepo.Delete(quizID)
}

// Submit 提交答案。准入校验按固定顺序：试卷存在 → 未重复提交 →
// 时间窗 → 答题时长预算；通过后判分落库。
// 会话状态不在这里流转，客户端需另行调用 complete。
func (s *QuizService) Submit(classroomID, quizID uint, req QuizSubmitReq, studentID uint) (*QuizResult, error) {
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	student, err := s.validateLearner(studentID)
	if err != nil {
		return nil, err
	}

	// 非本班成员不得提交
	member, err := s.ClassroomRepo.IsMember(classroomID, studentID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, util.ErrPermissionDenied
	}

	submitted, err := s.AnswerRepo.ExistsByQuizAndStudent(quizID, studentID)
	if err != nil {
		return nil, err
	}
	if submitted {
		return nil, util.ErrDuplicateSubmission
	}

	now := time.Now()
	if err := s.validateSubmissionTiming(quiz, studentID, now); err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	records := EvaluateSubmission(quiz, studentID, questions, req.Answers, now)
	if err := s.AnswerRepo.SaveAll(records); err != nil {
		return nil, err
	}

	s.invalidateStatusCache(quizID, studentID)

	logger.Log.Info("Quiz submitted",
		zap.Uint("quizId", quizID),
		zap.Uint("studentId", studentID),
		zap.Int("answers", len(records)))

	result := BuildQuizResult(quiz, student, questions, records)
	return &result, nil
}

// validateSubmissionTiming 时间准入控制：全局时间窗在前，
// 个人答题时长预算在后。有效起算时刻取最早答案时间，
// 否则在 [quiz.StartTime, now-limit] 之间取后者夹逼。
func (s *QuizService) validateSubmissionTiming(quiz *model.Quiz, studentID uint, now time.Time) error {
	if quiz.IsNotStarted(now) {
		return util.ErrQuizNotStarted
	}
	if quiz.IsEnded(now) {
		return util.ErrQuizEnded
	}

	if quiz.TimeLimitMinutes > 0 {
		limit := time.Duration(quiz.TimeLimitMinutes) * time.Minute

		records, err := s.AnswerRepo.FindByQuizAndStudent(quiz.ID, studentID)
		if err != nil {
			return err
		}

		var startedAt time.Time
		if len(records) > 0 {
			startedAt = records[0].AnsweredAt
			for _, rec := range records[1:] {
				if rec.AnsweredAt.Before(startedAt) {
					startedAt = rec.AnsweredAt
				}
			}
		} else {
			startedAt = now.Add(-limit)
			if quiz.StartTime.After(startedAt) {
				startedAt = quiz.StartTime
			}
		}

		elapsedMinutes := int(now.Sub(startedAt).Minutes())
		if elapsedMinutes > quiz.TimeLimitMinutes {
			return util.ErrTimeExceeded
		}
	}
	return nil
}

// GetMyResult 有答案记录返回正常成绩；只有会话记录（中途放弃）
// 返回合成的全错成绩；两者皆无视为无成绩。
func (s *QuizService) GetMyResult(classroomID, quizID, studentID uint) (*QuizResult, error) {
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	student, err := s.validateUserExists(studentID)
	if err != nil {
		return nil, err
	}

	records, err := s.AnswerRepo.FindByQuizAndStudent(quizID, studentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		result := BuildQuizResult(quiz, student, questions, records)
		return &result, nil
	}

	session, err := s.SessionRepo.FindByQuizAndStudent(quizID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	result := BuildDropoutResult(quiz, student, questions, session)
	return &result, nil
}

// GetResultsSummary 教育者查看全班成绩汇总，仅试卷创建者可见
func (s *QuizService) GetResultsSummary(classroomID, quizID, requesterID uint) (*QuizResultSummary, error) {
	if _, err := s.validateEducator(requesterID); err != nil {
		return nil, err
	}
	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != requesterID {
		return nil, util.ErrPermissionDenied
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	allRecords, err := s.AnswerRepo.FindByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, rec := range allRecords {
		if !seen[rec.StudentID] {
			seen[rec.StudentID] = true
			studentIDs = append(studentIDs, rec.StudentID)
		}
	}
	students, err := s.UserRepo.FindByIDs(studentIDs)
	if err != nil {
		return nil, err
	}

	summary := BuildResultSummary(quiz, questions, allRecords, students)
	return &summary, nil
}

// GetQuizStatus 当前用户视角的试卷状态，短 TTL 走 Redis 缓存
func (s *QuizService) GetQuizStatus(classroomID, quizID, userID uint) (*QuizStatusResponse, error) {
	cacheKey := statusCacheKey(quizID, userID)
	if s.Redis != nil {
		if val, err := s.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			var cached QuizStatusResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				return &cached, nil
			}
		}
	}

	quiz, err := s.validateQuizExists(quizID, classroomID)
	if err != nil {
		return nil, err
	}
	user, err := s.validateUserExists(userID)
	if err != nil {
		return nil, err
	}

	hasSubmitted := false
	if user.Role == model.Student {
		submitted, err := s.AnswerRepo.ExistsByQuizAndStudent(quizID, userID)
		if err != nil {
			return nil, err
		}
		hasSession, err := s.SessionRepo.ExistsByQuizAndStudent(quizID, userID)
		if err != nil {
			return nil, err
		}
		hasSubmitted = submitted || hasSession
	}

	now := time.Now()
	status := &QuizStatusResponse{
		QuizID:       quizID,
		Status:       quiz.Status(now),
		HasSubmitted: hasSubmitted,
		CanTake:      quiz.IsActive(now) && !hasSubmitted && user.Role == model.Student,
	}

	if s.Redis != nil {
		if data, err := json.Marshal(status); err == nil {
			s.Redis.Set(context.Background(), cacheKey, data, s.statusCacheTTL())
		}
	}
	return status, nil
}

func statusCacheKey(quizID, userID uint) string {
	return fmt.Sprintf("quiz:status:%d:%d", quizID, userID)
}

func (s *QuizService) invalidateStatusCache(quizID, userID uint) {
	if s.Redis != nil {
		s.Redis.Del(context.Background(), statusCacheKey(quizID, userID))
	}
}

func (s *QuizService) decorate(quiz *model.Quiz, creator, requestUser *model.User) (*QuizResponse, error) {
	questions, err := s.QuizRepo.ListQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	totalPoints := 0
	for _, q := range questions {
		totalPoints += q.Points
	}

	participantCount, err := s.AnswerRepo.CountDistinctStudents(quiz.ID)
	if err != nil {
		return nil, err
	}

	creatorName := "Unknown"
	if creator != nil {
		creatorName = creator.Name
	}

	hasSubmitted := false
	if requestUser != nil && requestUser.Role == model.Student {
		submitted, err := s.AnswerRepo.ExistsByQuizAndStudent(quiz.ID, requestUser.ID)
		if err != nil {
			return nil, err
		}
		hasSession, err := s.SessionRepo.ExistsByQuizAndStudent(quiz.ID, requestUser.ID)
		if err != nil {
			return nil, err
		}
		hasSubmitted = submitted || hasSession
	}

	return &QuizResponse{
		Quiz:             *quiz,
		CreatorName:      creatorName,
		TotalQuestions:   len(questions),
		TotalPoints:      totalPoints,
		ParticipantCount: participantCount,
		Status:           quiz.Status(time.Now()),
		HasSubmitted:     hasSubmitted,
	}, nil
}

// === 校验 ===

func (s *QuizService) validateUserExists(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *QuizService) validateEducator(userID uint) (*model.User, error) {
	user, err := s.validateUserExists(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsEducator() {
		return nil, util.ErrPermissionDenied
	}
	return user, nil
}

func (s *QuizService) validateLearner(userID uint) (*model.User, error) {
	user, err := s.validateUserExists(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.Student {
		return nil, util.ErrPermissionDenied
	}
	return user, nil
}

func (s *QuizService) validateQuizExists(quizID, classroomID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.ClassroomID != classroomID {
		return nil, util.ErrClassroomMismatch
	}
	return quiz, nil
}
