package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// FinanceController tracks income and expenses. Admin only.
type FinanceController struct {
	db *gorm.DB
}

// NewFinanceController creates a FinanceController.
func NewFinanceController(db *gorm.DB) *FinanceController {
	return &FinanceController{db: db}
}

// CreateEntry books one income or expense row.
func (f *FinanceController) CreateEntry(ctx *gin.Context) {
	var req struct {
		Kind        string     `json:"kind" binding:"required"`
		Source      string     `json:"source"`
		AmountCents int64      `json:"amount_cents" binding:"required,gt=0"`
		OccurredAt  *time.Time `json:"occurred_at"`
		Note        string     `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}
	if req.Kind != models.FinanceIncome && req.Kind != models.FinanceExpense {
		utils.Error(ctx, http.StatusBadRequest, 40091, "kind must be income or expense")
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	entry := models.FinanceEntry{
		Kind:        req.Kind,
		Source:      utils.Sanitize(strings.TrimSpace(req.Source)),
		AmountCents: req.AmountCents,
		OccurredAt:  occurredAt,
		Note:        utils.Sanitize(req.Note),
	}
	if err := f.db.Create(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to create entry")
		return
	}

	utils.Success(ctx, gin.H{"entry": entry})
}

// ListEntries returns paginated entries, optionally filtered by kind and range.
func (f *FinanceController) ListEntries(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	kind := strings.TrimSpace(ctx.Query("kind"))

	query := f.db.Model(&models.FinanceEntry{}).Order("occurred_at DESC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if v := ctx.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query = query.Where("occurred_at >= ?", t)
		}
	}
	if v := ctx.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			query = query.Where("occurred_at < ?", t)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to count entries")
		return
	}

	var entries []models.FinanceEntry
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to list entries")
		return
	}

	utils.Success(ctx, gin.H{
		"items": entries,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// DeleteEntry removes one entry.
func (f *FinanceController) DeleteEntry(ctx *gin.Context) {
	entryID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid entry id")
		return
	}

	result := f.db.Delete(&models.FinanceEntry{}, entryID)
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to delete entry")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40410, "entry not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "entry deleted"})
}

// FinanceSummaryCacheKey is shared with the monthly rollup job.
const FinanceSummaryCacheKey = "cache:finance:summary"

// Summary returns per-month income, expense and net totals. Cached; the
// monthly rollup job refreshes it as well.
func (f *FinanceController) Summary(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(FinanceSummaryCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	summaries, err := LoadFinanceSummary(f.db)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to summarize")
		return
	}

	payload := gin.H{"items": summaries}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(FinanceSummaryCacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// LoadFinanceSummary loads all entries and folds them into monthly totals.
// Shared with the scheduled rollup.
func LoadFinanceSummary(db *gorm.DB) ([]models.MonthlySummary, error) {
	var entries []models.FinanceEntry
	if err := db.Find(&entries).Error; err != nil {
		return nil, err
	}
	return models.SummarizeByMonth(entries), nil
}
