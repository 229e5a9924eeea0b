package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrSessionNotFound   = errors.New("quiz session not found")
	ErrPermissionDenied  = errors.New("permission denied")

	// 冲突类：重复或越界的写操作
	ErrAlreadyActiveSession = errors.New("an active quiz session already exists")
	ErrAttemptConsumed      = errors.New("quiz already completed or terminated, retake is not allowed")
	ErrDuplicateSubmission  = errors.New("answers already submitted for this quiz")

	// 前置条件类：时间窗或状态机校验失败
	ErrQuizNotStarted   = errors.New("quiz has not started yet")
	ErrQuizEnded        = errors.New("quiz has already ended")
	ErrTimeExceeded     = errors.New("quiz time limit exceeded")
	ErrSessionNotActive = errors.New("quiz session is not active")

	ErrInvalidQuizTimes  = errors.New("start time must be before end time")
	ErrClassroomMismatch = errors.New("quiz does not belong to this classroom")
)
