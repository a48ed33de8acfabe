package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// XP granted for turning in an assignment the first time.
const assignmentSubmitXP = 15

// AssignmentController manages assignments, submissions and grading.
type AssignmentController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewAssignmentController creates an AssignmentController.
func NewAssignmentController(db *gorm.DB, ledger *gamification.Ledger) *AssignmentController {
	return &AssignmentController{db: db, ledger: ledger}
}

func (a *AssignmentController) canManageAssignment(ctx *gin.Context, assignment *models.Assignment) bool {
	if isAdmin(ctx) {
		return true
	}
	var course models.Course
	if err := a.db.First(&course, assignment.CourseID).Error; err != nil {
		return false
	}
	userID, ok := getUserID(ctx)
	return ok && course.TeacherID == userID
}

// CreateAssignment adds coursework to a course the caller manages.
func (a *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req struct {
		CourseID     uint       `json:"course_id" binding:"required"`
		Title        string     `json:"title" binding:"required,min=1,max=255"`
		Instructions string     `json:"instructions"`
		DueAt        *time.Time `json:"due_at"`
		MaxPoints    *int       `json:"max_points"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	var course models.Course
	if err := a.db.First(&course, req.CourseID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "course not found")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok || (!isAdmin(ctx) && course.TeacherID != userID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	assignment := models.Assignment{
		CourseID:     req.CourseID,
		Title:        utils.Sanitize(strings.TrimSpace(req.Title)),
		Instructions: utils.Sanitize(req.Instructions),
		DueAt:        req.DueAt,
	}
	if req.MaxPoints != nil && *req.MaxPoints > 0 {
		assignment.MaxPoints = *req.MaxPoints
	}

	if err := a.db.Create(&assignment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create assignment")
		return
	}

	utils.Success(ctx, gin.H{"assignment": assignment})
}

// ListAssignments returns a course's assignments ordered by due date.
func (a *AssignmentController) ListAssignments(ctx *gin.Context) {
	courseID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid course id")
		return
	}

	var assignments []models.Assignment
	if err := a.db.Where("course_id = ?", courseID).
		Order("due_at IS NULL, due_at ASC").Find(&assignments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list assignments")
		return
	}

	utils.Success(ctx, gin.H{"items": assignments})
}

// UpdateAssignment edits assignment fields.
func (a *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	assignmentID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid assignment id")
		return
	}

	var assignment models.Assignment
	if err := a.db.First(&assignment, assignmentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "assignment not found")
		return
	}
	if !a.canManageAssignment(ctx, &assignment) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var req struct {
		Title        *string    `json:"title"`
		Instructions *string    `json:"instructions"`
		DueAt        *time.Time `json:"due_at"`
		MaxPoints    *int       `json:"max_points"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Instructions != nil {
		updates["instructions"] = utils.Sanitize(*req.Instructions)
	}
	if req.DueAt != nil {
		updates["due_at"] = *req.DueAt
	}
	if req.MaxPoints != nil && *req.MaxPoints > 0 {
		updates["max_points"] = *req.MaxPoints
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "nothing to update")
		return
	}

	if err := a.db.Model(&assignment).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update assignment")
		return
	}

	utils.Success(ctx, gin.H{"assignment": assignment})
}

// DeleteAssignment soft deletes an assignment.
func (a *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	assignmentID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid assignment id")
		return
	}

	var assignment models.Assignment
	if err := a.db.First(&assignment, assignmentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "assignment not found")
		return
	}
	if !a.canManageAssignment(ctx, &assignment) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	if err := a.db.Delete(&assignment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to delete assignment")
		return
	}

	utils.Success(ctx, gin.H{"message": "assignment deleted"})
}

// Submit records the caller's submission. Resubmitting before grading
// replaces the body; first submission awards XP.
func (a *AssignmentController) Submit(ctx *gin.Context) {
	assignmentID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid assignment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Body          string `json:"body" binding:"required"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	var assignment models.Assignment
	if err := a.db.First(&assignment, assignmentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "assignment not found")
		return
	}
	var enrollment models.Enrollment
	if err := a.db.Where("user_id = ? AND course_id = ?", userID, assignment.CourseID).First(&enrollment).Error; err != nil {
		utils.Error(ctx, http.StatusForbidden, 40303, "not enrolled in this course")
		return
	}

	var existing models.Submission
	err := a.db.Where("assignment_id = ? AND user_id = ?", assignmentID, userID).First(&existing).Error
	if err == nil {
		if existing.Grade != nil {
			utils.Error(ctx, http.StatusConflict, 40904, "submission already graded")
			return
		}
		updates := map[string]interface{}{
			"body":           utils.Sanitize(req.Body),
			"attachment_url": strings.TrimSpace(req.AttachmentURL),
			"submitted_at":   time.Now(),
		}
		if err := a.db.Model(&existing).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update submission")
			return
		}
		utils.Success(ctx, gin.H{"submission": existing, "resubmitted": true})
		return
	}

	submission := models.Submission{
		AssignmentID:  assignmentID,
		UserID:        userID,
		Body:          utils.Sanitize(req.Body),
		AttachmentURL: strings.TrimSpace(req.AttachmentURL),
		SubmittedAt:   time.Now(),
	}
	if err := a.db.Create(&submission).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to create submission")
		return
	}

	award, err := a.ledger.AddPoints(ctx.Request.Context(), userID, assignmentSubmitXP)
	if err != nil {
		utils.Sugar.Warnf("assignment %d submission: award failed for user %d: %v", assignmentID, userID, err)
	} else {
		invalidateAwardCaches(userID)
	}

	utils.Success(ctx, gin.H{"submission": submission, "award": award})
}

// ListSubmissions lets the course teacher review all submissions.
func (a *AssignmentController) ListSubmissions(ctx *gin.Context) {
	assignmentID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid assignment id")
		return
	}

	var assignment models.Assignment
	if err := a.db.First(&assignment, assignmentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "assignment not found")
		return
	}
	if !a.canManageAssignment(ctx, &assignment) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var submissions []models.Submission
	if err := a.db.Preload("User").Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to list submissions")
		return
	}

	utils.Success(ctx, gin.H{"items": submissions})
}

// Grade sets or revises a grade and feedback on one submission.
func (a *AssignmentController) Grade(ctx *gin.Context) {
	submissionID, ok := parseUintParam(ctx, "submission_id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid submission id")
		return
	}

	var submission models.Submission
	if err := a.db.First(&submission, submissionID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40406, "submission not found")
		return
	}
	var assignment models.Assignment
	if err := a.db.First(&assignment, submission.AssignmentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "assignment not found")
		return
	}
	if !a.canManageAssignment(ctx, &assignment) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	var req struct {
		Grade    *int   `json:"grade" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}
	if *req.Grade < 0 || *req.Grade > assignment.MaxPoints {
		utils.Error(ctx, http.StatusBadRequest, 40053, "grade out of range")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"grade":     *req.Grade,
		"feedback":  utils.Sanitize(req.Feedback),
		"graded_at": now,
	}
	if err := a.db.Model(&submission).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to grade submission")
		return
	}

	utils.Success(ctx, gin.H{"submission": submission})
}
