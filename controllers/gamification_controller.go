package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/config"
	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/utils"
)

// GamificationController exposes XP, streak, badge and leaderboard endpoints.
type GamificationController struct {
	db     *gorm.DB
	ledger *gamification.Ledger
}

// NewGamificationController creates a GamificationController.
func NewGamificationController(db *gorm.DB, ledger *gamification.Ledger) *GamificationController {
	return &GamificationController{db: db, ledger: ledger}
}

// MyProgress returns the caller's XP, level, streak and earned badges.
// Cached per user; every award path invalidates the key.
func (g *GamificationController) MyProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := "cache:progress:user:" + strconv.Itoa(int(userID))
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	snapshot, err := g.ledger.Snapshot(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load progress")
		return
	}

	payload := gin.H{"progress": snapshot}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// DailyClaim awards the configured daily login bonus once per calendar day.
func (g *GamificationController) DailyClaim(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	award, err := g.ledger.DailyClaim(ctx.Request.Context(), userID, config.Get().DailyRewardPoints)
	if err != nil {
		if errors.Is(err, gamification.ErrAlreadyClaimed) {
			utils.Error(ctx, http.StatusBadRequest, 40030, "already claimed today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to award daily bonus")
		return
	}

	invalidateAwardCaches(userID)
	utils.Success(ctx, gin.H{"award": award})
}

// LeaderboardEntry is one ranked row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
}

// LeaderboardCacheKey is shared with the nightly rebuild job.
const LeaderboardCacheKey = "cache:leaderboard:top"

// Leaderboard returns the top users by XP. The list is cached and also
// rebuilt nightly by the scheduler.
func (g *GamificationController) Leaderboard(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(LeaderboardCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	entries, err := BuildLeaderboard(g.db, config.Get().LeaderboardSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to build leaderboard")
		return
	}

	payload := gin.H{"items": entries}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(LeaderboardCacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// BuildLeaderboard queries the top n users by XP. Shared with the nightly
// cache rebuild job.
func BuildLeaderboard(db *gorm.DB, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}

	var rows []struct {
		UserID    uint
		Username  string
		AvatarURL string
		XP        int
		Level     int
	}
	err := db.Model(&models.UserGamification{}).
		Select("user_gamifications.user_id, users.username, users.avatar_url, user_gamifications.xp, user_gamifications.level").
		Joins("JOIN users ON users.id = user_gamifications.user_id AND users.deleted_at IS NULL").
		Order("user_gamifications.xp DESC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, LeaderboardEntry{
			Rank:      i + 1,
			UserID:    r.UserID,
			Username:  r.Username,
			AvatarURL: r.AvatarURL,
			XP:        r.XP,
			Level:     r.Level,
		})
	}
	return entries, nil
}

// Badges lists the badge catalog in unlock order.
func (g *GamificationController) Badges(ctx *gin.Context) {
	var badges []models.Badge
	if err := g.db.Order("xp_required ASC").Find(&badges).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list badges")
		return
	}

	utils.Success(ctx, gin.H{"items": badges})
}
