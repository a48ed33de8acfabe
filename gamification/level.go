// Package gamification implements the experience ledger: XP accrual, derived
// levels, daily activity streaks and badge unlocks. The database is the
// single source of truth; cached snapshots are invalidated after every write.
package gamification

// PointsPerLevel is the amount of XP that raises the level by one.
const PointsPerLevel = 100

// Level maps accumulated experience points to a level. Level 1 is the floor
// for zero points; every PointsPerLevel points raises it by exactly one.
func Level(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/PointsPerLevel + 1
}
