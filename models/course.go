package models

import (
	"time"

	"gorm.io/gorm"
)

// Course is a unit of teaching owned by a teacher account.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TeacherID   uint           `gorm:"index;not null" json:"teacher_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:64;index" json:"category"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Teacher     User           `gorm:"foreignKey:TeacherID" json:"teacher"`
	Lessons     []Lesson       `json:"lessons,omitempty"`
}

// Lesson is an ordered content item within a course. Content is sanitized
// HTML authored by the teacher.
type Lesson struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CourseID  uint           `gorm:"index;not null" json:"course_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	Position  int            `gorm:"default:0" json:"position"`
	XPReward  int            `gorm:"default:10" json:"xp_reward"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Enrollment links a student to a course. The (user, course) pair is unique.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_enroll_user_course;not null" json:"user_id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enroll_user_course;not null" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
	Course    Course    `json:"course,omitempty"`
}

// LessonProgress records a completed lesson. One row per (user, lesson);
// completion is idempotent and awards XP only on first insert.
type LessonProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"user_id"`
	LessonID    uint      `gorm:"uniqueIndex:idx_progress_user_lesson;not null" json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
}
