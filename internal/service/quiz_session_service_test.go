package service

import (
	"classhub_backend/internal/model"
	"classhub_backend/internal/repository"
	"classhub_backend/internal/util"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newSessionService(t *testing.T) (*QuizSessionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewQuizSessionService(repository.NewQuizSessionRepository(db), testConfig()), db
}

func TestStartSessionSingleAttempt(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if session.SessionStatus != model.SessionStarted {
		t.Errorf("status = %s, want STARTED", session.SessionStatus)
	}
	if len(session.SessionToken) != 32 {
		t.Errorf("token %q should be a dash-free uuid", session.SessionToken)
	}

	// 活跃会话存在时再次 start
	if _, err := svc.StartSession(1, 10); !errors.Is(err, util.ErrAlreadyActiveSession) {
		t.Fatalf("second start err = %v, want ErrAlreadyActiveSession", err)
	}

	if err := svc.CompleteSession(session.SessionToken); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 终态后应试资格已消耗
	if _, err := svc.StartSession(1, 10); !errors.Is(err, util.ErrAttemptConsumed) {
		t.Fatalf("third start err = %v, want ErrAttemptConsumed", err)
	}

	// 另一个测验不受影响
	if _, err := svc.StartSession(2, 10); err != nil {
		t.Fatalf("start on another quiz: %v", err)
	}
}

func TestStartSessionConcurrentExactlyOneWins(t *testing.T) {
	svc, _ := newSessionService(t)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.StartSession(5, 42)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, rejections := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, util.ErrAlreadyActiveSession):
			rejections++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if rejections != workers-1 {
		t.Fatalf("rejections = %d, want %d", rejections, workers-1)
	}
}

func TestTerminalStateImmutable(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	token := session.SessionToken

	if err := svc.CompleteSession(token); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 重复 complete 幂等
	if err := svc.CompleteSession(token); err != nil {
		t.Fatalf("repeat complete should be a no-op, got %v", err)
	}

	if err := svc.MarkInProgress(token); !errors.Is(err, util.ErrSessionNotActive) {
		t.Errorf("progress on completed err = %v, want ErrSessionNotActive", err)
	}
	if _, err := svc.RecordTabSwitch(token); !errors.Is(err, util.ErrSessionNotActive) {
		t.Errorf("tab-switch on completed err = %v, want ErrSessionNotActive", err)
	}
	if err := svc.TerminateSession(token, "late"); !errors.Is(err, util.ErrSessionNotActive) {
		t.Errorf("terminate on completed err = %v, want ErrSessionNotActive", err)
	}

	final, err := svc.GetSessionInfo(token)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if final.SessionStatus != model.SessionCompleted {
		t.Fatalf("status = %s, terminal state must not change", final.SessionStatus)
	}
	if final.TabSwitchCount != 0 {
		t.Errorf("tabSwitchCount = %d, counter must not move after terminal", final.TabSwitchCount)
	}
}

func TestUnknownTokenClassifiedAsNotFound(t *testing.T) {
	svc, _ := newSessionService(t)

	if err := svc.MarkInProgress("nope"); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.GetSessionInfo("nope"); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
	if svc.IsSessionValid("nope") {
		t.Errorf("unknown token must not be valid")
	}
}

func TestTabSwitchLimitForcesTermination(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	token := session.SessionToken

	for i := 1; i <= 2; i++ {
		updated, err := svc.RecordTabSwitch(token)
		if err != nil {
			t.Fatalf("tab switch %d: %v", i, err)
		}
		if updated.TabSwitchCount != i {
			t.Fatalf("tabSwitchCount = %d, want %d", updated.TabSwitchCount, i)
		}
		if !updated.IsActive() {
			t.Fatalf("session terminated early at count %d", i)
		}
	}

	// 第三次达到阈值，自动强制终止
	final, err := svc.RecordTabSwitch(token)
	if err != nil {
		t.Fatalf("tab switch 3: %v", err)
	}
	if final.SessionStatus != model.SessionTerminated {
		t.Fatalf("status = %s, want TERMINATED", final.SessionStatus)
	}
	if !final.IsForceTerminated {
		t.Errorf("isForceTerminated should be set")
	}
	if final.TerminationReason == "" {
		t.Errorf("termination reason should record the trigger")
	}
	if final.EndTime == nil {
		t.Errorf("endTime should be set on termination")
	}

	if svc.IsSessionValid(token) {
		t.Errorf("terminated session must not be valid")
	}
}

func TestWarningLimitForcesTermination(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	token := session.SessionToken

	var final *model.QuizSession
	for i := 1; i <= 3; i++ {
		final, err = svc.RecordWarning(token)
		if err != nil {
			t.Fatalf("warning %d: %v", i, err)
		}
	}
	if final.SessionStatus != model.SessionTerminated {
		t.Fatalf("status = %s, want TERMINATED after 3 warnings", final.SessionStatus)
	}
}

func TestViolationsBelowLimitKeepSessionAlive(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	token := session.SessionToken

	for i := 1; i <= 4; i++ {
		updated, err := svc.RecordViolation(token)
		if err != nil {
			t.Fatalf("violation %d: %v", i, err)
		}
		if !updated.IsActive() {
			t.Fatalf("terminated at violation %d, limit is 5", i)
		}
	}

	final, err := svc.RecordViolation(token)
	if err != nil {
		t.Fatalf("violation 5: %v", err)
	}
	if final.SessionStatus != model.SessionTerminated {
		t.Fatalf("status = %s, want TERMINATED at violation 5", final.SessionStatus)
	}
}

func TestCanRetake(t *testing.T) {
	svc, _ := newSessionService(t)

	ok, err := svc.CanRetake(1, 10)
	if err != nil || !ok {
		t.Fatalf("fresh student should be able to take: ok=%v err=%v", ok, err)
	}

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 活跃会话已占用资格
	if ok, _ := svc.CanRetake(1, 10); ok {
		t.Errorf("active session should block retake")
	}

	if err := svc.TerminateSession(session.SessionToken, "caught"); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	// 终态依然占用资格，不允许重考
	if ok, _ := svc.CanRetake(1, 10); ok {
		t.Errorf("terminated session should block retake")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc, db := newSessionService(t)
	repo := repository.NewQuizSessionRepository(db)

	staleStart := time.Now().Add(-4 * time.Hour)

	stale := &model.QuizSession{
		QuizID: 1, StudentID: 10,
		SessionToken:  model.GenerateToken(),
		SessionStatus: model.SessionStarted,
		StartTime:     staleStart,
	}
	staleInProgress := &model.QuizSession{
		QuizID: 1, StudentID: 11,
		SessionToken:  model.GenerateToken(),
		SessionStatus: model.SessionInProgress,
		StartTime:     staleStart,
	}
	completedOld := &model.QuizSession{
		QuizID: 1, StudentID: 12,
		SessionToken:  model.GenerateToken(),
		SessionStatus: model.SessionCompleted,
		StartTime:     staleStart,
	}
	fresh := &model.QuizSession{
		QuizID: 1, StudentID: 13,
		SessionToken:  model.GenerateToken(),
		SessionStatus: model.SessionStarted,
		StartTime:     time.Now(),
	}
	for _, s := range []*model.QuizSession{stale, staleInProgress, completedOld, fresh} {
		if err := repo.Create(s); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	if err := svc.CleanupExpiredSessions(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	expect := map[string]model.SessionStatus{
		stale.SessionToken:           model.SessionExpired,
		staleInProgress.SessionToken: model.SessionExpired,
		completedOld.SessionToken:    model.SessionCompleted, // 已完成的不受清扫影响
		fresh.SessionToken:           model.SessionStarted,   // 未过期的保持活跃
	}
	for token, want := range expect {
		got, err := repo.FindByToken(token)
		if err != nil {
			t.Fatalf("find %s: %v", token, err)
		}
		if got.SessionStatus != want {
			t.Errorf("session %s status = %s, want %s", token, got.SessionStatus, want)
		}
	}

	// 过期的会话要有结束时间
	expired, _ := repo.FindByToken(stale.SessionToken)
	if expired.EndTime == nil {
		t.Errorf("expired session should get an endTime")
	}
}

func TestApplyConfigAdjustsLimits(t *testing.T) {
	svc, _ := newSessionService(t)

	session, err := svc.StartSession(1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	cfg := testConfig()
	cfg.Quiz.TabSwitchLimit = 1
	svc.ApplyConfig(cfg)

	final, err := svc.RecordTabSwitch(session.SessionToken)
	if err != nil {
		t.Fatalf("tab switch: %v", err)
	}
	if final.SessionStatus != model.SessionTerminated {
		t.Fatalf("status = %s, want TERMINATED with lowered limit", final.SessionStatus)
	}
}
