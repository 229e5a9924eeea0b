package app

import (
	"classhub_backend/docs"
	"classhub_backend/internal/config"
	"classhub_backend/internal/middleware"
	"classhub_backend/internal/model"

	"classhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerQuizRoutes(authGroup, c)
		a.registerSessionRoutes(authGroup, c)
	}
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	quizzes := rg.Group("/classrooms/:classroomId/quizzes")
	{
		quizzes.GET("", c.quiz.GetQuizzes)
		quizzes.GET("/:quizId", c.quiz.GetQuizDetail)
		quizzes.GET("/:quizId/my-result", c.quiz.GetMyResult)
		quizzes.GET("/:quizId/status", c.quiz.GetQuizStatus)
		quizzes.POST("/:quizId/submit", c.quiz.SubmitQuiz)

		// 教学管理接口
		teacherOnly := quizzes.Group("")
		teacherOnly.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
		{
			teacherOnly.POST("", c.quiz.CreateQuiz)
			teacherOnly.PUT("/:quizId", c.quiz.UpdateQuiz)
			teacherOnly.DELETE("/:quizId", c.quiz.DeleteQuiz)
			teacherOnly.GET("/:quizId/results", c.quiz.GetResultsSummary)
		}
	}
}

func (a *App) registerSessionRoutes(rg *gin.RouterGroup, c *controllers) {
	sessions := rg.Group("/quiz-sessions")
	{
		sessions.POST("/start", c.session.StartSession)
		sessions.GET("/can-retake", c.session.CanRetake)
		sessions.GET("/:token/status", c.session.GetSessionStatus)
		sessions.POST("/:token/progress", c.session.MarkInProgress)
		sessions.POST("/:token/complete", c.session.CompleteSession)
		sessions.POST("/:token/terminate", c.session.TerminateSession)
		sessions.POST("/:token/tab-switch", c.session.RecordTabSwitch)
		sessions.POST("/:token/violation", c.session.RecordViolation)
		sessions.POST("/:token/warning", c.session.RecordWarning)
	}
}
