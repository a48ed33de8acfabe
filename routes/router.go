package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/config"
	"github.com/studyhall/studyhall/controllers"
	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/middleware"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, ledger *gamification.Ledger) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	courseController := controllers.NewCourseController(db, ledger)
	quizController := controllers.NewQuizController(db, ledger)
	assignmentController := controllers.NewAssignmentController(db, ledger)
	gamificationController := controllers.NewGamificationController(db, ledger)
	orderController := controllers.NewOrderController(db)
	calendarController := controllers.NewCalendarController(db)
	financeController := controllers.NewFinanceController(db)
	adminController := controllers.NewAdminController(db, ledger)
	dashboardController := controllers.NewDashboardController(db, ledger)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public catalog
	api.GET("/courses", courseController.ListCourses)
	api.GET("/courses/:id", courseController.GetCourse)
	api.GET("/users/:id", authController.GetUserPublic)
	api.GET("/gamification/badges", gamificationController.Badges)
	api.GET("/gamification/leaderboard", gamificationController.Leaderboard)
	api.GET("/kits", orderController.ListKits)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	// Student actions
	protected.POST("/courses/:id/enroll", courseController.Enroll)
	protected.GET("/enrollments", courseController.MyEnrollments)
	protected.POST("/lessons/:lesson_id/complete", courseController.CompleteLesson)
	protected.GET("/quizzes/:id", quizController.GetQuiz)
	protected.POST("/quizzes/:id/submit", quizController.SubmitQuiz)
	protected.GET("/quizzes/:id/attempts", quizController.MyAttempts)
	protected.GET("/courses/:id/assignments", assignmentController.ListAssignments)
	protected.POST("/assignments/:id/submit", assignmentController.Submit)
	protected.GET("/gamification/me", gamificationController.MyProgress)
	protected.POST("/gamification/daily", gamificationController.DailyClaim)
	protected.POST("/orders", orderController.CreateOrder)
	protected.GET("/orders", orderController.MyOrders)
	protected.POST("/orders/:order_no/cancel", orderController.CancelOrder)
	protected.GET("/calendar", calendarController.ListEvents)
	protected.POST("/calendar", calendarController.CreateEvent)
	protected.PUT("/calendar/:id", calendarController.UpdateEvent)
	protected.DELETE("/calendar/:id", calendarController.DeleteEvent)
	protected.GET("/dashboard/student", dashboardController.Student)

	// Teaching staff
	staff := protected.Group("")
	staff.Use(middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
	staff.POST("/courses", courseController.CreateCourse)
	staff.PUT("/courses/:id", courseController.UpdateCourse)
	staff.DELETE("/courses/:id", courseController.DeleteCourse)
	staff.POST("/courses/:id/lessons", courseController.CreateLesson)
	staff.PUT("/lessons/:lesson_id", courseController.UpdateLesson)
	staff.DELETE("/lessons/:lesson_id", courseController.DeleteLesson)
	staff.POST("/quizzes", quizController.CreateQuiz)
	staff.DELETE("/quizzes/:id", quizController.DeleteQuiz)
	staff.POST("/assignments", assignmentController.CreateAssignment)
	staff.PUT("/assignments/:id", assignmentController.UpdateAssignment)
	staff.DELETE("/assignments/:id", assignmentController.DeleteAssignment)
	staff.GET("/assignments/:id/submissions", assignmentController.ListSubmissions)
	staff.POST("/submissions/:submission_id/grade", assignmentController.Grade)
	staff.GET("/dashboard/teacher", dashboardController.Teacher)

	// Admin only
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", adminController.ListUsers)
	admin.PATCH("/users/:id/role", adminController.SetRole)
	admin.DELETE("/users/:id", adminController.DeleteUser)
	admin.POST("/users/:id/badges", adminController.GrantBadge)
	admin.POST("/kits", orderController.CreateKit)
	admin.PUT("/kits/:id", orderController.UpdateKit)
	admin.GET("/orders", orderController.ListOrders)
	admin.POST("/orders/:order_no/confirm", orderController.ConfirmPaid)
	admin.POST("/finance", financeController.CreateEntry)
	admin.GET("/finance", financeController.ListEntries)
	admin.DELETE("/finance/:id", financeController.DeleteEntry)
	admin.GET("/finance/summary", financeController.Summary)
	admin.GET("/dashboard", dashboardController.Admin)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
