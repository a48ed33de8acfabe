package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhall/studyhall/middleware"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getRole(ctx *gin.Context) string {
	return ctx.GetString(middleware.ContextRoleKey)
}

func isAdmin(ctx *gin.Context) bool {
	return getRole(ctx) == models.RoleAdmin
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// invalidateAwardCaches drops read caches that go stale when a user earns
// XP or badges.
func invalidateAwardCaches(userID uint) {
	utils.InvalidateByPrefix("cache:progress:user:" + strconv.Itoa(int(userID)))
	utils.InvalidateByPrefix(LeaderboardCacheKey)
}
