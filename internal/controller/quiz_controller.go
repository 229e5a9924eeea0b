package controller

import (
	"strconv"

	"classhub_backend/internal/service"
	"classhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// @Summary 创建测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param body body service.QuizReq true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.CreateQuiz(classroomID, req, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 获取班级测验列表
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes [get]
func (c *QuizController) GetQuizzes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizzes, err := c.QuizService.GetQuizzes(classroomID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary 获取测验详情
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId} [get]
func (c *QuizController) GetQuizDetail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	detail, err := c.QuizService.GetQuizDetail(classroomID, quizID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 更新测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Param body body service.QuizReq true "测验信息"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.UpdateQuiz(classroomID, quizID, req, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 删除测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuiz(classroomID, quizID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 提交测验答案
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Param body body service.QuizSubmitReq true "答案列表"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	var req service.QuizSubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.QuizService.Submit(classroomID, quizID, req, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取本人测验成绩
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId}/my-result [get]
func (c *QuizController) GetMyResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	result, err := c.QuizService.GetMyResult(classroomID, quizID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取测验成绩汇总（教师）
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId}/results [get]
func (c *QuizController) GetResultsSummary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	summary, err := c.QuizService.GetResultsSummary(classroomID, quizID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// @Summary 获取测验当前状态
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param classroomId path int true "班级ID"
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/classrooms/{classroomId}/quizzes/{quizId}/status [get]
func (c *QuizController) GetQuizStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	classroomID, ok := parseIDParam(ctx, "classroomId")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(ctx, "quizId")
	if !ok {
		return
	}
	status, err := c.QuizService.GetQuizStatus(classroomID, quizID, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}
