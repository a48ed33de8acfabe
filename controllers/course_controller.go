package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// CourseController manages courses, lessons, enrollment and lesson progress.
type CourseController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewCourseController creates a CourseController.
func NewCourseController(db *gorm.DB, ledger *gamification.Ledger) *CourseController {
	return &CourseController{db: db, ledger: ledger}
}

// canManageCourse reports whether the caller owns the course or is an admin.
func (c *CourseController) canManageCourse(ctx *gin.Context, course *models.Course) bool {
	if isAdmin(ctx) {
		return true
	}
	userID, ok := getUserID(ctx)
	return ok && course.TeacherID == userID
}

// CreateCourse lets teachers create a new course, unpublished by default.
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1,max=255"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	course := models.Course{
		TeacherID:   userID,
		Title:       title,
		Description: utils.Sanitize(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}
	if err := c.db.Create(&course).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create course")
		return
	}

	utils.InvalidateByPrefix("cache:courses:list:")
	utils.Success(ctx, gin.H{"course": course})
}

// ListCourses returns paginated published courses. Teachers and admins can ask
// for unpublished ones with mine=1 / all=1.
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))
	mine := ctx.Query("mine") == "1"
	all := ctx.Query("all") == "1" && isAdmin(ctx)

	// Cache the public catalog only; personal and admin views vary per caller.
	cacheable := search == "" && !mine && !all
	cacheKey := fmt.Sprintf("cache:courses:list:cat=%s:page=%d:size=%d", category, page, pageSize)
	if cacheable {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	query := c.db.Model(&models.Course{}).Preload("Teacher").Order("created_at DESC")
	switch {
	case all:
	case mine:
		userID, ok := getUserID(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
			return
		}
		query = query.Where("teacher_id = ?", userID)
	default:
		query = query.Where("published = ?", true)
	}
	if search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count courses")
		return
	}

	var courses []models.Course
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&courses).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list courses")
		return
	}

	payload := gin.H{
		"items": courses,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	}
	if cacheable {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)
	}
	utils.Success(ctx, payload)
}

// GetCourse returns one course with its lessons ordered by position.
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}

	var course models.Course
	err := c.db.Preload("Teacher").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&course, courseID).Error
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}

	if !course.Published && !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}

	utils.Success(ctx, gin.H{"course": course})
}

// UpdateCourse edits course fields, including the published flag.
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}

	var course models.Course
	if err := c.db.First(&course, courseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	if !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Published   *bool   `json:"published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := utils.Sanitize(strings.TrimSpace(*req.Title))
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = utils.Sanitize(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "nothing to update")
		return
	}

	if err := c.db.Model(&course).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update course")
		return
	}

	utils.InvalidateByPrefix("cache:courses:list:")
	utils.Success(ctx, gin.H{"course": course})
}

// DeleteCourse soft deletes a course.
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}

	var course models.Course
	if err := c.db.First(&course, courseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	if !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	if err := c.db.Delete(&course).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to delete course")
		return
	}

	utils.InvalidateByPrefix("cache:courses:list:")
	utils.Success(ctx, gin.H{"message": "course deleted"})
}

// CreateLesson appends a lesson to a course the caller manages.
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}

	var course models.Course
	if err := c.db.First(&course, courseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	if !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var req struct {
		Title    string `json:"title" binding:"required,min=1,max=255"`
		Content  string `json:"content"`
		Position *int   `json:"position"`
		XPReward *int   `json:"xp_reward"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var maxPos int
		c.db.Model(&models.Lesson{}).Where("course_id = ?", courseID).
			Select("COALESCE(MAX(position), -1)").Scan(&maxPos)
		position = maxPos + 1
	}

	lesson := models.Lesson{
		CourseID: courseID,
		Title:    utils.Sanitize(strings.TrimSpace(req.Title)),
		Content:  utils.Sanitize(req.Content),
		Position: position,
	}
	if req.XPReward != nil && *req.XPReward >= 0 {
		lesson.XPReward = *req.XPReward
	}

	if err := c.db.Create(&lesson).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create lesson")
		return
	}

	utils.Success(ctx, gin.H{"lesson": lesson})
}

// UpdateLesson edits lesson fields.
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	lessonID, ok := parseUintParam(ctx, "lesson_id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid lesson id")
		return
	}

	var lesson models.Lesson
	if err := c.db.First(&lesson, lessonID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "lesson not found")
		return
	}
	var course models.Course
	if err := c.db.First(&course, lesson.CourseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	if !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var req struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Position *int    `json:"position"`
		XPReward *int    `json:"xp_reward"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Content != nil {
		updates["content"] = utils.Sanitize(*req.Content)
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.XPReward != nil && *req.XPReward >= 0 {
		updates["xp_reward"] = *req.XPReward
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "nothing to update")
		return
	}

	if err := c.db.Model(&lesson).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update lesson")
		return
	}

	utils.Success(ctx, gin.H{"lesson": lesson})
}

// DeleteLesson removes a lesson from a course the caller manages.
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	lessonID, ok := parseUintParam(ctx, "lesson_id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid lesson id")
		return
	}

	var lesson models.Lesson
	if err := c.db.First(&lesson, lessonID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "lesson not found")
		return
	}
	var course models.Course
	if err := c.db.First(&course, lesson.CourseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	if !c.canManageCourse(ctx, &course) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	if err := c.db.Delete(&lesson).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to delete lesson")
		return
	}

	utils.Success(ctx, gin.H{"message": "lesson deleted"})
}

// Enroll registers the authenticated student in a published course.
func (c *CourseController) Enroll(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var course models.Course
	if err := c.db.First(&course, courseID).Error; err != nil || !course.Published {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}

	var existing models.Enrollment
	if err := c.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40903, "already enrolled")
		return
	}

	enrollment := models.Enrollment{UserID: userID, CourseID: courseID}
	if err := c.db.Create(&enrollment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to enroll")
		return
	}

	utils.Success(ctx, gin.H{"enrollment": enrollment})
}

// MyEnrollments lists courses the caller is enrolled in, with progress counts.
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var enrollments []models.Enrollment
	if err := c.db.Preload("Course").Preload("Course.Teacher").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&enrollments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to list enrollments")
		return
	}

	items := make([]gin.H, 0, len(enrollments))
	for _, e := range enrollments {
		var totalLessons, doneLessons int64
		c.db.Model(&models.Lesson{}).Where("course_id = ?", e.CourseID).Count(&totalLessons)
		c.db.Model(&models.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
			Where("lesson_progresses.user_id = ? AND lessons.course_id = ?", userID, e.CourseID).
			Count(&doneLessons)
		items = append(items, gin.H{
			"enrollment":        e,
			"total_lessons":     totalLessons,
			"completed_lessons": doneLessons,
		})
	}

	utils.Success(ctx, gin.H{"items": items})
}

// CompleteLesson marks a lesson finished for the caller and awards its XP.
// Repeat completions are acknowledged without awarding again.
func (c *CourseController) CompleteLesson(ctx *gin.Context) {
	lessonID, ok := parseUintParam(ctx, "lesson_id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid lesson id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var lesson models.Lesson
	if err := c.db.First(&lesson, lessonID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "lesson not found")
		return
	}

	var enrollment models.Enrollment
	if err := c.db.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
		utils.Error(ctx, http.StatusForbidden, 40303, "not enrolled in this course")
		return
	}

	progress := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: time.Now(),
	}
	if err := c.db.Create(&progress).Error; err != nil {
		var existing models.LessonProgress
		if lookupErr := c.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&existing).Error; lookupErr == nil {
			utils.Success(ctx, gin.H{"progress": existing, "already_completed": true})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to record progress")
		return
	}

	award, err := c.ledger.AddPoints(ctx.Request.Context(), userID, lesson.XPReward)
	if err != nil {
		utils.Sugar.Warnf("lesson %d completion: award failed for user %d: %v", lessonID, userID, err)
	} else {
		invalidateAwardCaches(userID)
	}

	utils.Success(ctx, gin.H{"progress": progress, "award": award})
}
