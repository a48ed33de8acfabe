package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// DashboardController serves role-specific home page aggregates.
type DashboardController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(db *gorm.DB, ledger *gamification.Ledger) *DashboardController {
	return &DashboardController{db: db, ledger: ledger}
}

// Student summarizes the caller's enrollments, pending work and progress.
func (d *DashboardController) Student(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var enrolledCourses int64
	d.db.Model(&models.Enrollment{}).Where("user_id = ?", userID).Count(&enrolledCourses)

	var completedLessons int64
	d.db.Model(&models.LessonProgress{}).Where("user_id = ?", userID).Count(&completedLessons)

	// Assignments due in the next week without a submission yet.
	now := time.Now()
	var upcoming []models.Assignment
	d.db.Joins("JOIN enrollments ON enrollments.course_id = assignments.course_id").
		Where("enrollments.user_id = ?", userID).
		Where("assignments.due_at IS NOT NULL AND assignments.due_at BETWEEN ? AND ?", now, now.AddDate(0, 0, 7)).
		Where("assignments.id NOT IN (?)",
			d.db.Model(&models.Submission{}).Select("assignment_id").Where("user_id = ?", userID)).
		Order("assignments.due_at ASC").Limit(5).Find(&upcoming)

	snapshot, err := d.ledger.Snapshot(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to load progress")
		return
	}

	claimed, _ := d.ledger.ClaimedToday(ctx.Request.Context(), userID)

	utils.Success(ctx, gin.H{
		"enrolled_courses":     enrolledCourses,
		"completed_lessons":    completedLessons,
		"upcoming_assignments": upcoming,
		"progress":             snapshot,
		"daily_reward_claimed": claimed,
	})
}

// Teacher summarizes the caller's courses, students and ungraded work.
func (d *DashboardController) Teacher(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var courseCount int64
	d.db.Model(&models.Course{}).Where("teacher_id = ?", userID).Count(&courseCount)

	var studentCount int64
	d.db.Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.teacher_id = ? AND courses.deleted_at IS NULL", userID).
		Count(&studentCount)

	var ungraded int64
	d.db.Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN courses ON courses.id = assignments.course_id").
		Where("courses.teacher_id = ? AND submissions.grade IS NULL", userID).
		Count(&ungraded)

	utils.Success(ctx, gin.H{
		"courses":              courseCount,
		"enrolled_students":    studentCount,
		"ungraded_submissions": ungraded,
	})
}

const adminDashboardCacheKey = "cache:dashboard:admin"

// Admin summarizes platform-wide counts. Cached briefly since every number
// is a table scan.
func (d *DashboardController) Admin(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(adminDashboardCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var users, students, teachers, courses, enrollments, pendingOrders int64
	d.db.Model(&models.User{}).Count(&users)
	d.db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&students)
	d.db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&teachers)
	d.db.Model(&models.Course{}).Count(&courses)
	d.db.Model(&models.Enrollment{}).Count(&enrollments)
	d.db.Model(&models.KitOrder{}).Where("status = ?", models.OrderPending).Count(&pendingOrders)

	var revenue int64
	d.db.Model(&models.FinanceEntry{}).Where("kind = ?", models.FinanceIncome).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&revenue)

	payload := gin.H{
		"users":          users,
		"students":       students,
		"teachers":       teachers,
		"courses":        courses,
		"enrollments":    enrollments,
		"pending_orders": pendingOrders,
		"revenue_cents":  revenue,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(adminDashboardCacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}
