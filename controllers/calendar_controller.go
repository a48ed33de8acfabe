package controllers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// CalendarController manages per-user schedule entries and merges in
// assignment due dates from enrolled courses.
type CalendarController struct {
	db *gorm.DB
}

// NewCalendarController creates a CalendarController.
func NewCalendarController(db *gorm.DB) *CalendarController {
	return &CalendarController{db: db}
}

// CreateEvent adds a personal calendar entry.
func (c *CalendarController) CreateEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Title    string    `json:"title" binding:"required,min=1,max=255"`
		Notes    string    `json:"notes"`
		StartsAt time.Time `json:"starts_at" binding:"required"`
		EndsAt   time.Time `json:"ends_at"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		utils.Error(ctx, http.StatusBadRequest, 40081, "ends_at must not be before starts_at")
		return
	}

	event := models.CalendarEvent{
		UserID:   userID,
		Title:    utils.Sanitize(strings.TrimSpace(req.Title)),
		Notes:    utils.Sanitize(req.Notes),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Kind:     "personal",
	}
	if err := c.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to create event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// UpdateEvent edits one of the caller's events.
func (c *CalendarController) UpdateEvent(ctx *gin.Context) {
	eventID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid event id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var event models.CalendarEvent
	if err := c.db.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40409, "event not found")
		return
	}

	var req struct {
		Title    *string    `json:"title"`
		Notes    *string    `json:"notes"`
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Notes != nil {
		updates["notes"] = utils.Sanitize(*req.Notes)
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "nothing to update")
		return
	}

	if err := c.db.Model(&event).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to update event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// DeleteEvent removes one of the caller's events.
func (c *CalendarController) DeleteEvent(ctx *gin.Context) {
	eventID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid event id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result := c.db.Where("id = ? AND user_id = ?", eventID, userID).Delete(&models.CalendarEvent{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to delete event")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40409, "event not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "event deleted"})
}

// ListEvents returns the caller's events in a time range, merged with due
// dates of assignments from enrolled courses. Defaults to the current month.
func (c *CalendarController) ListEvents(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	if v := ctx.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := ctx.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}
	if !to.After(from) {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid time range")
		return
	}

	var events []models.CalendarEvent
	if err := c.db.Where("user_id = ? AND starts_at >= ? AND starts_at < ?", userID, from, to).
		Order("starts_at ASC").Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to list events")
		return
	}

	// Surface assignment deadlines from enrolled courses as synthetic entries.
	var assignments []models.Assignment
	err := c.db.Joins("JOIN enrollments ON enrollments.course_id = assignments.course_id").
		Where("enrollments.user_id = ? AND assignments.due_at IS NOT NULL AND assignments.due_at >= ? AND assignments.due_at < ?", userID, from, to).
		Find(&assignments).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to load deadlines")
		return
	}
	for _, a := range assignments {
		events = append(events, models.CalendarEvent{
			UserID:   userID,
			Title:    "Due: " + a.Title,
			StartsAt: *a.DueAt,
			EndsAt:   *a.DueAt,
			Kind:     "assignment_due",
		})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })

	utils.Success(ctx, gin.H{"items": events, "from": from, "to": to})
}
