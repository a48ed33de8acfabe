package models

import "time"

// UserGamification is the per-user experience record. One row per user,
// upserted by the gamification ledger which is its sole writer.
type UserGamification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	XP        int       `gorm:"default:0" json:"xp"`
	Level     int       `gorm:"default:1" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserStreak tracks consecutive-day activity. LongestStreak is a running
// maximum of every CurrentStreak value observed for the user.
type UserStreak struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Badge is read-only reference data describing an achievement threshold.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:64" json:"icon"`
	XPRequired  int       `gorm:"not null;index" json:"xp_required"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBadge is append-only; a (user, badge) pair is earned at most once and
// never removed.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeID  uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
	Badge    Badge     `json:"badge,omitempty"`
}
