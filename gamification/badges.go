package gamification

import "github.com/studyhall/studyhall/models"

// UnlockableBadges filters the catalog down to badges whose threshold is met
// by currentPoints and which the user has not yet earned. Catalog order is
// preserved; callers read the catalog ascending by threshold so results come
// back in that order. A single large award may unlock several badges at once.
func UnlockableBadges(currentPoints int, catalog []models.Badge, earned map[uint]bool) []models.Badge {
	var unlocked []models.Badge
	for _, b := range catalog {
		if b.XPRequired <= currentPoints && !earned[b.ID] {
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}
