package service

import (
	"classhub_backend/internal/model"
	"classhub_backend/internal/repository"
	"classhub_backend/internal/util"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type quizEnv struct {
	db       *gorm.DB
	mr       *miniredis.Miniredis
	quiz     *QuizService
	sessions *QuizSessionService
}

func newQuizEnv(t *testing.T) *quizEnv {
	t.Helper()
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	sessionRepo := repository.NewQuizSessionRepository(db)
	quizSvc := NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewQuizAnswerRepository(db),
		sessionRepo,
		repository.NewUserRepository(db),
		repository.NewClassroomRepository(db),
		rdb,
		cfg,
	)
	return &quizEnv{
		db:       db,
		mr:       mr,
		quiz:     quizSvc,
		sessions: NewQuizSessionService(sessionRepo, cfg),
	}
}

func (e *quizEnv) mustCreateClassroom(t *testing.T, creatorID uint, memberIDs ...uint) *model.Classroom {
	t.Helper()
	classroom := &model.Classroom{Name: "Class A", CreatorID: creatorID}
	if err := e.db.Create(classroom).Error; err != nil {
		t.Fatalf("create classroom: %v", err)
	}
	for _, id := range memberIDs {
		member := &model.ClassroomMember{ClassroomID: classroom.ID, UserID: id}
		if err := e.db.Create(member).Error; err != nil {
			t.Fatalf("add member %d: %v", id, err)
		}
	}
	return classroom
}

func activeQuizReq() QuizReq {
	now := time.Now()
	return QuizReq{
		Title:     "Capitals",
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		Questions: []QuestionReq{
			{QuestionText: "2+2?", QuestionType: model.MultipleChoice, Options: `["3","4"]`, CorrectAnswer: "B", Points: 5, OrderIndex: 1},
			{QuestionText: "Capital of France?", QuestionType: model.ShortAnswer, CorrectAnswer: "Paris", Points: 10, OrderIndex: 2},
			{QuestionText: "Capital of Italy?", QuestionType: model.ShortAnswer, CorrectAnswer: "Rome", Points: 10, OrderIndex: 3},
		},
	}
}

func TestCreateQuizAuthorizationAndValidation(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	if _, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), student.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("student create err = %v, want ErrPermissionDenied", err)
	}

	if _, err := env.quiz.CreateQuiz(9999, activeQuizReq(), teacher.ID); !errors.Is(err, util.ErrClassroomNotFound) {
		t.Fatalf("unknown classroom err = %v, want ErrClassroomNotFound", err)
	}

	bad := activeQuizReq()
	bad.StartTime, bad.EndTime = bad.EndTime, bad.StartTime
	if _, err := env.quiz.CreateQuiz(classroom.ID, bad, teacher.ID); !errors.Is(err, util.ErrInvalidQuizTimes) {
		t.Fatalf("inverted times err = %v, want ErrInvalidQuizTimes", err)
	}

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.TotalQuestions != 3 || created.TotalPoints != 25 {
		t.Errorf("decorations wrong: questions=%d points=%d", created.TotalQuestions, created.TotalPoints)
	}
	if created.Status != model.QuizActive {
		t.Errorf("status = %s, want ACTIVE", created.Status)
	}
	if created.CreatorName != "teacher" {
		t.Errorf("creatorName = %q", created.CreatorName)
	}
}

func TestSubmitAdmissionControl(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	outsider := mustCreateUser(t, env.db, "outsider", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	questions, _ := env.quiz.QuizRepo.ListQuestions(created.ID)
	answers := QuizSubmitReq{Answers: []AnswerSubmission{{QuestionID: questions[0].ID, Answer: "B"}}}

	// 错误班级
	other := env.mustCreateClassroom(t, teacher.ID)
	if _, err := env.quiz.Submit(other.ID, created.ID, answers, student.ID); !errors.Is(err, util.ErrClassroomMismatch) {
		t.Fatalf("wrong classroom err = %v, want ErrClassroomMismatch", err)
	}

	// 教师不能作为学生应试
	if _, err := env.quiz.Submit(classroom.ID, created.ID, answers, teacher.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("teacher submit err = %v, want ErrPermissionDenied", err)
	}

	// 非本班成员
	if _, err := env.quiz.Submit(classroom.ID, created.ID, answers, outsider.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("outsider submit err = %v, want ErrPermissionDenied", err)
	}

	if _, err := env.quiz.Submit(classroom.ID, created.ID, answers, student.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 重复提交
	if _, err := env.quiz.Submit(classroom.ID, created.ID, answers, student.ID); !errors.Is(err, util.ErrDuplicateSubmission) {
		t.Fatalf("second submit err = %v, want ErrDuplicateSubmission", err)
	}
}

func TestSubmitTimeWindow(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	now := time.Now()

	future := activeQuizReq()
	future.StartTime = now.Add(time.Hour)
	future.EndTime = now.Add(2 * time.Hour)
	notStarted, err := env.quiz.CreateQuiz(classroom.ID, future, teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	past := activeQuizReq()
	past.StartTime = now.Add(-2 * time.Hour)
	past.EndTime = now.Add(-time.Hour)
	ended, err := env.quiz.CreateQuiz(classroom.ID, past, teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := QuizSubmitReq{Answers: []AnswerSubmission{}}
	if _, err := env.quiz.Submit(classroom.ID, notStarted.ID, req, student.ID); !errors.Is(err, util.ErrQuizNotStarted) {
		t.Errorf("not started err = %v, want ErrQuizNotStarted", err)
	}
	if _, err := env.quiz.Submit(classroom.ID, ended.ID, req, student.ID); !errors.Is(err, util.ErrQuizEnded) {
		t.Errorf("ended err = %v, want ErrQuizEnded", err)
	}
}

func TestSubmissionTimingBudget(t *testing.T) {
	env := newQuizEnv(t)
	now := time.Now()
	quiz := &model.Quiz{
		ClassroomID:      1,
		CreatorID:        1,
		Title:            "Timed",
		StartTime:        now.Add(-3 * time.Hour),
		EndTime:          now.Add(time.Hour),
		TimeLimitMinutes: 30,
	}
	if err := env.quiz.QuizRepo.Create(quiz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	const studentID = 77

	// 没有历史答案时，起算时刻被夹逼在预算内，不会超时
	if err := env.quiz.validateSubmissionTiming(quiz, studentID, now); err != nil {
		t.Fatalf("fresh submission should pass: %v", err)
	}

	// 45 分钟前已有答案记录，超出 30 分钟预算
	records := []model.QuizAnswerRecord{{
		QuizID:     quiz.ID,
		StudentID:  studentID,
		QuestionID: 1,
		Answer:     "A",
		AnsweredAt: now.Add(-45 * time.Minute),
	}}
	if err := env.quiz.AnswerRepo.SaveAll(records); err != nil {
		t.Fatalf("seed records: %v", err)
	}
	if err := env.quiz.validateSubmissionTiming(quiz, studentID, now); !errors.Is(err, util.ErrTimeExceeded) {
		t.Fatalf("err = %v, want ErrTimeExceeded", err)
	}

	// 无预算限制的测验不受影响
	quiz.TimeLimitMinutes = 0
	if err := env.quiz.validateSubmissionTiming(quiz, studentID, now); err != nil {
		t.Fatalf("no budget should pass: %v", err)
	}
}

func TestQuizLifecycleEndToEnd(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 学生视角的详情不暴露标准答案
	detail, err := env.quiz.GetQuizDetail(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Questions) != 3 {
		t.Fatalf("student should see 3 questions, got %d", len(detail.Questions))
	}
	for _, q := range detail.Questions {
		if q.CorrectAnswer != "" {
			t.Fatalf("correct answer leaked to student: %+v", q)
		}
	}

	// 教师视角携带答案
	teacherDetail, err := env.quiz.GetQuizDetail(classroom.ID, created.ID, teacher.ID)
	if err != nil {
		t.Fatalf("teacher detail: %v", err)
	}
	if teacherDetail.Questions[0].CorrectAnswer == "" {
		t.Fatalf("teacher should see correct answers")
	}

	session, err := env.sessions.StartSession(created.ID, student.ID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := env.sessions.MarkInProgress(session.SessionToken); err != nil {
		t.Fatalf("progress: %v", err)
	}

	questions, _ := env.quiz.QuizRepo.ListQuestions(created.ID)
	req := QuizSubmitReq{Answers: []AnswerSubmission{
		{QuestionID: questions[0].ID, Answer: "b"},     // 对，忽略大小写
		{QuestionID: questions[1].ID, Answer: "paris"}, // 对
		{QuestionID: questions[2].ID, Answer: "milan"}, // 错
	}}
	result, err := env.quiz.Submit(classroom.ID, created.ID, req, student.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CorrectAnswers != 2 || result.EarnedPoints != 15 {
		t.Fatalf("scoring wrong: correct=%d earned=%d", result.CorrectAnswers, result.EarnedPoints)
	}

	// 提交不会替学生收尾会话
	info, _ := env.sessions.GetSessionInfo(session.SessionToken)
	if info.SessionStatus != model.SessionInProgress {
		t.Fatalf("submit must not transition the session, got %s", info.SessionStatus)
	}
	if err := env.sessions.CompleteSession(session.SessionToken); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 有答案记录时成绩来自真实记录
	myResult, err := env.quiz.GetMyResult(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("my result: %v", err)
	}
	if myResult.CorrectAnswers != 2 {
		t.Fatalf("myResult correct = %d, want 2", myResult.CorrectAnswers)
	}

	summary, err := env.quiz.GetResultsSummary(classroom.ID, created.ID, teacher.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalParticipants != 1 || summary.MaxPossibleScore != 25 {
		t.Fatalf("summary header wrong: %+v", summary)
	}
	if summary.AverageScore != 15 {
		t.Errorf("averageScore = %v, want 15", summary.AverageScore)
	}
	wantAvgPct := 15.0 / 25 * 100
	if summary.AveragePercentage != wantAvgPct {
		t.Errorf("averagePercentage = %v, want %v", summary.AveragePercentage, wantAvgPct)
	}
	p := summary.Participants[0]
	wantPct := float64(2) / 3 * 100
	if p.Score != 15 || p.CorrectAnswers != 2 || p.Percentage != wantPct {
		t.Errorf("participant row wrong: %+v", p)
	}
}

func TestGetMyResultDropout(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 既无答案也无会话
	if _, err := env.quiz.GetMyResult(classroom.ID, created.ID, student.ID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("no attempt err = %v, want ErrSessionNotFound", err)
	}

	session, err := env.sessions.StartSession(created.ID, student.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := env.sessions.TerminateSession(session.SessionToken, "tab switching"); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	// 只有会话记录：合成全错成绩
	result, err := env.quiz.GetMyResult(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("dropout result: %v", err)
	}
	if result.CorrectAnswers != 0 || result.EarnedPoints != 0 {
		t.Fatalf("dropout must be all incorrect: %+v", result)
	}
	if result.TotalQuestions != 3 || len(result.AnswerResults) != 3 {
		t.Fatalf("dropout must cover every question: %+v", result)
	}
}

func TestResultsSummaryAuthorization(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	other := mustCreateUser(t, env.db, "other-teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.quiz.GetResultsSummary(classroom.ID, created.ID, student.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("student err = %v, want ErrPermissionDenied", err)
	}
	// 其他教师不是创建者
	if _, err := env.quiz.GetResultsSummary(classroom.ID, created.ID, other.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("non-creator err = %v, want ErrPermissionDenied", err)
	}
}

func TestQuizStatusCaching(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != model.QuizActive || !status.CanTake || status.HasSubmitted {
		t.Fatalf("fresh status wrong: %+v", status)
	}

	key := fmt.Sprintf("quiz:status:%d:%d", created.ID, student.ID)
	if !env.mr.Exists(key) {
		t.Fatalf("status should be cached under %s", key)
	}

	// 缓存命中时不回源：改库后短期内仍返回旧值
	env.db.Model(&model.Quiz{}).Where("id = ?", created.ID).Update("end_time", time.Now().Add(-time.Minute))
	cached, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("cached status: %v", err)
	}
	if cached.Status != model.QuizActive {
		t.Fatalf("expected cached ACTIVE, got %s", cached.Status)
	}

	// TTL 到期后回源拿到新状态
	env.mr.FastForward(time.Duration(testConfig().Quiz.StatusCacheSeconds+1) * time.Second)
	refreshed, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("refreshed status: %v", err)
	}
	if refreshed.Status != model.QuizEnded {
		t.Fatalf("expected ENDED after expiry, got %s", refreshed.Status)
	}
}

func TestStatusCacheTTLHotReload(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 热更新缓存 TTL 后，新写入的缓存按新值过期
	cfg := testConfig()
	cfg.Quiz.StatusCacheSeconds = 5
	env.quiz.ApplyConfig(cfg)

	if _, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID); err != nil {
		t.Fatalf("status: %v", err)
	}
	key := fmt.Sprintf("quiz:status:%d:%d", created.ID, student.ID)
	if got := env.mr.TTL(key); got != 5*time.Second {
		t.Fatalf("cache TTL = %v, want %v", got, 5*time.Second)
	}
}

func TestSubmitInvalidatesStatusCache(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	student := mustCreateUser(t, env.db, "student", model.Student)
	classroom := env.mustCreateClassroom(t, teacher.ID, student.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID); err != nil {
		t.Fatalf("status: %v", err)
	}
	key := fmt.Sprintf("quiz:status:%d:%d", created.ID, student.ID)
	if !env.mr.Exists(key) {
		t.Fatalf("expected cache entry before submit")
	}

	questions, _ := env.quiz.QuizRepo.ListQuestions(created.ID)
	req := QuizSubmitReq{Answers: []AnswerSubmission{{QuestionID: questions[0].ID, Answer: "B"}}}
	if _, err := env.quiz.Submit(classroom.ID, created.ID, req, student.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if env.mr.Exists(key) {
		t.Fatalf("submit must invalidate the status cache")
	}

	status, err := env.quiz.GetQuizStatus(classroom.ID, created.ID, student.ID)
	if err != nil {
		t.Fatalf("status after submit: %v", err)
	}
	if !status.HasSubmitted || status.CanTake {
		t.Fatalf("post-submit status wrong: %+v", status)
	}
}

func TestUpdateAndDeleteQuizOwnership(t *testing.T) {
	env := newQuizEnv(t)
	teacher := mustCreateUser(t, env.db, "teacher", model.Teacher)
	other := mustCreateUser(t, env.db, "other-teacher", model.Teacher)
	classroom := env.mustCreateClassroom(t, teacher.ID)

	created, err := env.quiz.CreateQuiz(classroom.ID, activeQuizReq(), teacher.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := activeQuizReq()
	req.Title = "Renamed"
	req.Questions = []QuestionReq{
		{QuestionText: "Only one", QuestionType: model.ShortAnswer, CorrectAnswer: "yes", Points: 3, OrderIndex: 1},
	}

	if _, err := env.quiz.UpdateQuiz(classroom.ID, created.ID, req, other.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("non-creator update err = %v, want ErrPermissionDenied", err)
	}

	updated, err := env.quiz.UpdateQuiz(classroom.ID, created.ID, req, teacher.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q", updated.Title)
	}
	// 题目整体替换
	if updated.TotalQuestions != 1 || updated.TotalPoints != 3 {
		t.Errorf("questions not replaced: %+v", updated)
	}

	if err := env.quiz.DeleteQuiz(classroom.ID, created.ID, other.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("non-creator delete err = %v, want ErrPermissionDenied", err)
	}
	if err := env.quiz.DeleteQuiz(classroom.ID, created.ID, teacher.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.quiz.GetQuizDetail(classroom.ID, created.ID, teacher.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("after delete err = %v, want ErrQuizNotFound", err)
	}
}
