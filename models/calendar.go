package models

import "time"

// CalendarEvent is a per-user schedule entry. Kind distinguishes manual
// entries from ones surfaced automatically (assignment due dates).
type CalendarEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Notes     string    `gorm:"size:1024" json:"notes"`
	StartsAt  time.Time `gorm:"index;not null" json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Kind      string    `gorm:"size:32;default:personal" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
