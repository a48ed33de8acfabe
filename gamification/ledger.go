package gamification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyhall/studyhall/models"
)

// Ledger orchestrates XP accrual, streak updates and badge unlocks. It is the
// sole writer of user_gamification and user_streaks rows and only ever
// inserts user_badges rows.
type Ledger struct {
	db    *gorm.DB
	log   *zap.SugaredLogger
	clock func() time.Time
}

// NewLedger creates a Ledger backed by the given database.
func NewLedger(db *gorm.DB, log *zap.SugaredLogger) *Ledger {
	return &Ledger{db: db, log: log, clock: time.Now}
}

// AwardResult reports the outcome of one AddPoints call.
type AwardResult struct {
	TotalAwarded int            `json:"total_awarded"`
	StreakBonus  int            `json:"streak_bonus"`
	XP           int            `json:"xp"`
	Level        int            `json:"level"`
	Unlocked     []models.Badge `json:"unlocked,omitempty"`
}

// Snapshot is the read model exposed to the presentation layer.
type Snapshot struct {
	XP            int                `json:"xp"`
	Level         int                `json:"level"`
	CurrentStreak int                `json:"current_streak"`
	LongestStreak int                `json:"longest_streak"`
	LastActivity  *time.Time         `json:"last_activity_date"`
	Badges        []models.UserBadge `json:"badges"`
}

// ErrAlreadyClaimed rejects a repeat daily-bonus claim for the current day.
var ErrAlreadyClaimed = errors.New("daily bonus already claimed")

// AddPoints awards amount XP to the user plus any streak bonus, persists the
// new experience record, unlocks qualifying badges and advances the streak.
// All steps run in one transaction with the experience row locked on MySQL,
// serializing concurrent awards per user. On failure the zero AwardResult is
// returned and nothing is reported as applied.
func (l *Ledger) AddPoints(ctx context.Context, userID uint, amount int) (AwardResult, error) {
	return l.awardInTx(ctx, userID, amount, false)
}

// DailyClaim awards the daily login bonus, at most once per calendar day.
// The claimed check runs inside the award transaction under the experience
// row lock, so concurrent claims cannot both pass it; the loser gets
// ErrAlreadyClaimed.
func (l *Ledger) DailyClaim(ctx context.Context, userID uint, amount int) (AwardResult, error) {
	return l.awardInTx(ctx, userID, amount, true)
}

func (l *Ledger) awardInTx(ctx context.Context, userID uint, amount int, onceToday bool) (AwardResult, error) {
	if amount < 0 {
		return AwardResult{}, errors.New("amount must be non-negative")
	}

	var result AwardResult
	today := l.clock()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gam, err := l.lockExperience(tx, userID)
		if err != nil {
			return err
		}

		var streak models.UserStreak
		if err := tx.Where("user_id = ?", userID).First(&streak).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			streak = models.UserStreak{UserID: userID}
		}

		sr := EvaluateStreak(streak.LastActivityDate, today, streak.CurrentStreak)
		if onceToday && sr.AlreadyCounted {
			return ErrAlreadyClaimed
		}

		totalAwarded := amount + sr.Bonus
		gam.XP += totalAwarded
		gam.Level = Level(gam.XP)
		if err := tx.Save(gam).Error; err != nil {
			return err
		}

		unlocked, err := l.unlockBadges(tx, userID, gam.XP, today)
		if err != nil {
			return err
		}

		// Same-day repeats leave the streak record untouched.
		if !sr.AlreadyCounted {
			streak.CurrentStreak = sr.NewStreak
			if sr.NewStreak > streak.LongestStreak {
				streak.LongestStreak = sr.NewStreak
			}
			activity := today
			streak.LastActivityDate = &activity
			if err := tx.Save(&streak).Error; err != nil {
				return err
			}
		}

		result = AwardResult{
			TotalAwarded: totalAwarded,
			StreakBonus:  sr.Bonus,
			XP:           gam.XP,
			Level:        gam.Level,
			Unlocked:     unlocked,
		}
		return nil
	})
	if err != nil {
		return AwardResult{}, err
	}
	return result, nil
}

// AwardBadgeByName grants a badge directly, bypassing the XP threshold.
// Unknown names and already-earned badges are silent no-ops.
func (l *Ledger) AwardBadgeByName(ctx context.Context, userID uint, name string) error {
	var badge models.Badge
	if err := l.db.WithContext(ctx).Where("name = ?", name).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var count int64
	if err := l.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badge.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return l.db.WithContext(ctx).Create(&models.UserBadge{
		UserID:   userID,
		BadgeID:  badge.ID,
		EarnedAt: l.clock(),
	}).Error
}

// Snapshot loads the user's current gamification state. Missing rows come
// back zero-valued with level 1.
func (l *Ledger) Snapshot(ctx context.Context, userID uint) (Snapshot, error) {
	snap := Snapshot{Level: 1}

	var gam models.UserGamification
	err := l.db.WithContext(ctx).Where("user_id = ?", userID).First(&gam).Error
	if err == nil {
		snap.XP = gam.XP
		snap.Level = gam.Level
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, err
	}

	var streak models.UserStreak
	err = l.db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error
	if err == nil {
		snap.CurrentStreak = streak.CurrentStreak
		snap.LongestStreak = streak.LongestStreak
		snap.LastActivity = streak.LastActivityDate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, err
	}

	if err := l.db.WithContext(ctx).Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&snap.Badges).Error; err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// ClaimedToday reports whether the user already has streak credit for the
// current calendar day, used to reject repeat daily-bonus claims.
func (l *Ledger) ClaimedToday(ctx context.Context, userID uint) (bool, error) {
	var streak models.UserStreak
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if streak.LastActivityDate == nil {
		return false, nil
	}
	return daysBetween(*streak.LastActivityDate, l.clock()) == 0, nil
}

// lockExperience loads (or initializes) the user's experience row. On MySQL
// the row is locked for the duration of the transaction; SQLite serializes
// writers on its own.
func (l *Ledger) lockExperience(tx *gorm.DB, userID uint) (*models.UserGamification, error) {
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var gam models.UserGamification
	if err := q.Where("user_id = ?", userID).First(&gam).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		gam = models.UserGamification{UserID: userID, Level: 1}
	}
	return &gam, nil
}

// unlockBadges inserts one earned-badge row per newly qualifying badge.
// Individual insert failures (a badge deleted between read and award, or a
// concurrent duplicate) are logged and skipped rather than failing the award.
func (l *Ledger) unlockBadges(tx *gorm.DB, userID uint, currentXP int, now time.Time) ([]models.Badge, error) {
	var catalog []models.Badge
	if err := tx.Order("xp_required ASC").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var earnedRows []models.UserBadge
	if err := tx.Where("user_id = ?", userID).Find(&earnedRows).Error; err != nil {
		return nil, err
	}
	earned := make(map[uint]bool, len(earnedRows))
	for _, row := range earnedRows {
		earned[row.BadgeID] = true
	}

	var unlocked []models.Badge
	for _, badge := range UnlockableBadges(currentXP, catalog, earned) {
		err := tx.Create(&models.UserBadge{
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: now,
		}).Error
		if err != nil {
			if l.log != nil {
				l.log.Warnf("skipping badge %q for user %d: %v", badge.Name, userID, err)
			}
			continue
		}
		unlocked = append(unlocked, badge)
	}
	return unlocked, nil
}
