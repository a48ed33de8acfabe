package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// AdminController covers user administration endpoints.
type AdminController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB, ledger *gamification.Ledger) *AdminController {
	return &AdminController{db: db, ledger: ledger}
}

// ListUsers returns paginated users with optional role and search filters.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	role := strings.TrimSpace(ctx.Query("role"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := a.db.Model(&models.User{}).Order("created_at DESC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to count users")
		return
	}

	var users []models.User
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, sanitizeUserResponse(u))
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// SetRole changes a user's role.
func (a *AdminController) SetRole(ctx *gin.Context) {
	targetID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid user id")
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		utils.Error(ctx, http.StatusBadRequest, 40121, "invalid role")
		return
	}

	// Admins cannot demote themselves; keeps at least one admin reachable.
	callerID, _ := getUserID(ctx)
	if callerID == targetID && req.Role != models.RoleAdmin {
		utils.Error(ctx, http.StatusBadRequest, 40122, "cannot change your own role")
		return
	}

	var user models.User
	if err := a.db.First(&user, targetID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if err := a.db.Model(&user).Update("role", req.Role).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to update role")
		return
	}

	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
}

// DeleteUser soft deletes an account. Self-deletion is refused.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	targetID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid user id")
		return
	}

	callerID, _ := getUserID(ctx)
	if callerID == targetID {
		utils.Error(ctx, http.StatusBadRequest, 40123, "cannot delete your own account")
		return
	}

	var user models.User
	if err := a.db.First(&user, targetID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if err := a.db.Delete(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to delete user")
		return
	}

	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// GrantBadge manually awards a catalog badge by name, e.g. for community
// contributions the XP thresholds cannot capture. Granting twice is a no-op.
func (a *AdminController) GrantBadge(ctx *gin.Context) {
	targetID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid user id")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40124, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, targetID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if err := a.ledger.AwardBadgeByName(ctx.Request.Context(), targetID, req.Name); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to grant badge")
		return
	}

	invalidateAwardCaches(targetID)
	utils.Success(ctx, gin.H{"message": "badge granted"})
}
