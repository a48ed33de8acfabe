package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// QuizController manages quizzes, their questions and graded attempts.
type QuizController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewQuizController creates a QuizController.
func NewQuizController(db *gorm.DB, ledger *gamification.Ledger) *QuizController {
	return &QuizController{db: db, ledger: ledger}
}

// XP for a perfect quiz is score*10/maxScore, with a floor for any passing
// attempt so short quizzes still feel rewarding.
const quizXPFloor = 5

func quizXP(score, maxScore int) int {
	if maxScore == 0 || score == 0 {
		return 0
	}
	xp := score * 10 / maxScore
	if xp < quizXPFloor {
		xp = quizXPFloor
	}
	return xp
}

func (q *QuizController) courseForLesson(lessonID uint) (*models.Course, *models.Lesson, error) {
	var lesson models.Lesson
	if err := q.db.First(&lesson, lessonID).Error; err != nil {
		return nil, nil, err
	}
	var course models.Course
	if err := q.db.First(&course, lesson.CourseID).Error; err != nil {
		return nil, nil, err
	}
	return &course, &lesson, nil
}

func (q *QuizController) canManageQuiz(ctx *gin.Context, quiz *models.Quiz) bool {
	if isAdmin(ctx) {
		return true
	}
	course, _, err := q.courseForLesson(quiz.LessonID)
	if err != nil {
		return false
	}
	userID, ok := getUserID(ctx)
	return ok && course.TeacherID == userID
}

// CreateQuiz attaches a quiz with questions to a lesson.
func (q *QuizController) CreateQuiz(ctx *gin.Context) {
	var req struct {
		LessonID  uint   `json:"lesson_id" binding:"required"`
		Title     string `json:"title" binding:"required,min=1,max=255"`
		Questions []struct {
			Prompt       string   `json:"prompt" binding:"required"`
			Options      []string `json:"options" binding:"required,min=2"`
			CorrectIndex int      `json:"correct_index"`
		} `json:"questions" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	course, _, err := q.courseForLesson(req.LessonID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "lesson not found")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok || (!isAdmin(ctx) && course.TeacherID != userID) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	for i, question := range req.Questions {
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			utils.Error(ctx, http.StatusBadRequest, 40041, "correct_index out of range for question "+strconv.Itoa(i))
			return
		}
	}

	quiz := models.Quiz{LessonID: req.LessonID, Title: utils.Sanitize(strings.TrimSpace(req.Title))}
	err = q.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for i, question := range req.Questions {
			opts, _ := json.Marshal(question.Options)
			record := models.QuizQuestion{
				QuizID:       quiz.ID,
				Prompt:       utils.Sanitize(question.Prompt),
				Options:      opts,
				CorrectIndex: question.CorrectIndex,
				Position:     i,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create quiz")
		return
	}

	utils.Success(ctx, gin.H{"quiz": quiz})
}

// GetQuiz returns a quiz with questions in position order. Answer keys are
// stripped by the model's JSON tags.
func (q *QuizController) GetQuiz(ctx *gin.Context) {
	quizID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid quiz id")
		return
	}

	var quiz models.Quiz
	err := q.db.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&quiz, quizID).Error
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "quiz not found")
		return
	}

	utils.Success(ctx, gin.H{"quiz": quiz})
}

// DeleteQuiz removes a quiz and its questions.
func (q *QuizController) DeleteQuiz(ctx *gin.Context) {
	quizID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid quiz id")
		return
	}

	var quiz models.Quiz
	if err := q.db.First(&quiz, quizID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "quiz not found")
		return
	}
	if !q.canManageQuiz(ctx, &quiz) {
		utils.Error(ctx, http.StatusForbidden, 40302, "not your course")
		return
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&quiz).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to delete quiz")
		return
	}

	utils.Success(ctx, gin.H{"message": "quiz deleted"})
}

// SubmitQuiz grades an attempt, stores it and awards XP through the ledger.
func (q *QuizController) SubmitQuiz(ctx *gin.Context) {
	quizID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid quiz id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Answers []int `json:"answers" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var quiz models.Quiz
	if err := q.db.First(&quiz, quizID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40404, "quiz not found")
		return
	}

	_, lesson, err := q.courseForLesson(quiz.LessonID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "lesson not found")
		return
	}
	var enrollment models.Enrollment
	if err := q.db.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
		utils.Error(ctx, http.StatusForbidden, 40303, "not enrolled in this course")
		return
	}

	var questions []models.QuizQuestion
	if err := q.db.Where("quiz_id = ?", quizID).Order("position ASC").Find(&questions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load questions")
		return
	}

	score, maxScore := models.GradeQuiz(questions, req.Answers)

	attempt := models.QuizAttempt{
		UserID:   userID,
		QuizID:   quizID,
		Answers:  models.MarshalAnswers(req.Answers),
		Score:    score,
		MaxScore: maxScore,
	}
	if err := q.db.Create(&attempt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to store attempt")
		return
	}

	// Only the first attempt per quiz earns XP.
	var priorAttempts int64
	q.db.Model(&models.QuizAttempt{}).Where("user_id = ? AND quiz_id = ? AND id <> ?", userID, quizID, attempt.ID).Count(&priorAttempts)

	var award gamification.AwardResult
	if priorAttempts == 0 {
		if xp := quizXP(score, maxScore); xp > 0 {
			award, err = q.ledger.AddPoints(ctx.Request.Context(), userID, xp)
			if err != nil {
				utils.Sugar.Warnf("quiz %d submission: award failed for user %d: %v", quizID, userID, err)
			} else {
				invalidateAwardCaches(userID)
			}
		}
	}

	utils.Success(ctx, gin.H{"attempt": attempt, "award": award})
}

// MyAttempts lists the caller's attempts for one quiz, newest first.
func (q *QuizController) MyAttempts(ctx *gin.Context) {
	quizID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid quiz id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var attempts []models.QuizAttempt
	if err := q.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at DESC").Find(&attempts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to list attempts")
		return
	}

	utils.Success(ctx, gin.H{"items": attempts})
}
