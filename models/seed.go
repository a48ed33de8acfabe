package models

import "gorm.io/gorm"

// defaultBadges is the built-in badge catalog, ascending by threshold.
var defaultBadges = []Badge{
	{Name: "First Steps", Description: "Earn your first experience points", Icon: "footprints", XPRequired: 1},
	{Name: "Getting Warmed Up", Description: "Reach 100 XP", Icon: "flame", XPRequired: 100},
	{Name: "Dedicated Learner", Description: "Reach 500 XP", Icon: "book", XPRequired: 500},
	{Name: "Scholar", Description: "Reach 1000 XP", Icon: "graduation-cap", XPRequired: 1000},
	{Name: "Master", Description: "Reach 5000 XP", Icon: "trophy", XPRequired: 5000},
}

// SeedDefaultBadges inserts the built-in catalog when the badges table is
// empty. Existing catalogs are left untouched.
func SeedDefaultBadges(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Badge{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	badges := make([]Badge, len(defaultBadges))
	copy(badges, defaultBadges)
	return db.Create(&badges).Error
}
