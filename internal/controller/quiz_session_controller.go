package controller

import (
	"strconv"

	"classhub_backend/internal/model"
	"classhub_backend/internal/service"
	"classhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizSessionController struct {
	SessionService *service.QuizSessionService
}

func NewQuizSessionController(sessionService *service.QuizSessionService) *QuizSessionController {
	return &QuizSessionController{SessionService: sessionService}
}

// resolveOwnedSession 按令牌取会话并校验归属。普通用户只能操作
// 本人的会话；allowEducator 时教师与管理员放行。
func (c *QuizSessionController) resolveOwnedSession(ctx *gin.Context, allowEducator bool) (*model.QuizSession, *util.Claims, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, nil, false
	}
	token := ctx.Param("token")
	if token == "" {
		util.BadRequest(ctx, "missing session token")
		return nil, nil, false
	}
	session, err := c.SessionService.GetSessionInfo(token)
	if err != nil {
		util.RespondError(ctx, err)
		return nil, nil, false
	}
	isEducator := user.Role == model.Teacher || user.Role == model.Admin
	if session.StudentID != user.UserID && !(allowEducator && isEducator) {
		util.Forbidden(ctx)
		return nil, nil, false
	}
	return session, user, true
}

// @Summary 开始测验会话
// @Tags 测验会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "quizId"
// @Success 201 {object} util.Response
// @Router /api/quiz-sessions/start [post]
func (c *QuizSessionController) StartSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var body struct {
		QuizID uint `json:"quizId" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.StartSession(body.QuizID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// @Summary 会话进入答题中
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/progress [post]
func (c *QuizSessionController) MarkInProgress(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, false)
	if !ok {
		return
	}
	if err := c.SessionService.MarkInProgress(session.SessionToken); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessionToken": session.SessionToken, "sessionStatus": model.SessionInProgress})
}

// @Summary 完成会话
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/complete [post]
func (c *QuizSessionController) CompleteSession(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, false)
	if !ok {
		return
	}
	if err := c.SessionService.CompleteSession(session.SessionToken); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessionToken": session.SessionToken, "sessionStatus": model.SessionCompleted})
}

// @Summary 终止会话
// @Tags 测验会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Param body body object false "reason"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/terminate [post]
func (c *QuizSessionController) TerminateSession(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, true)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.ShouldBindJSON(&body)
	if body.Reason == "" {
		body.Reason = "Terminated by user"
	}
	if err := c.SessionService.TerminateSession(session.SessionToken, body.Reason); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessionToken": session.SessionToken, "sessionStatus": model.SessionTerminated})
}

// @Summary 记录切屏行为
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/tab-switch [post]
func (c *QuizSessionController) RecordTabSwitch(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, false)
	if !ok {
		return
	}
	updated, err := c.SessionService.RecordTabSwitch(session.SessionToken)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary 记录违规行为
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/violation [post]
func (c *QuizSessionController) RecordViolation(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, false)
	if !ok {
		return
	}
	updated, err := c.SessionService.RecordViolation(session.SessionToken)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary 记录警告
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/warning [post]
func (c *QuizSessionController) RecordWarning(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, false)
	if !ok {
		return
	}
	updated, err := c.SessionService.RecordWarning(session.SessionToken)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary 查询会话状态
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param token path string true "会话令牌"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/{token}/status [get]
func (c *QuizSessionController) GetSessionStatus(ctx *gin.Context) {
	session, _, ok := c.resolveOwnedSession(ctx, true)
	if !ok {
		return
	}
	util.Success(ctx, gin.H{
		"valid":   session.IsActive(),
		"session": session,
	})
}

// @Summary 查询能否再次参加测验
// @Tags 测验会话
// @Produce json
// @Security BearerAuth
// @Param quizId query int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quiz-sessions/can-retake [get]
func (c *QuizSessionController) CanRetake(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	quizStr := ctx.Query("quizId")
	quizID, err := strconv.Atoi(quizStr)
	if err != nil || quizID <= 0 {
		util.BadRequest(ctx, "invalid quizId")
		return
	}
	canRetake, err := c.SessionService.CanRetake(uint(quizID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"canRetake": canRetake})
}
