package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is coursework with a due date, graded by the course teacher.
type Assignment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CourseID     uint           `gorm:"index;not null" json:"course_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Instructions string         `gorm:"type:text" json:"instructions"`
	DueAt        *time.Time     `json:"due_at"`
	MaxPoints    int            `gorm:"default:100" json:"max_points"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Submission is a student's answer to an assignment. One row per
// (assignment, user); resubmission before grading overwrites the body.
type Submission struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AssignmentID  uint       `gorm:"uniqueIndex:idx_submission_pair;not null" json:"assignment_id"`
	UserID        uint       `gorm:"uniqueIndex:idx_submission_pair;not null" json:"user_id"`
	Body          string     `gorm:"type:text" json:"body"`
	AttachmentURL string     `gorm:"size:512" json:"attachment_url"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	Grade         *int       `json:"grade"`
	Feedback      string     `gorm:"size:1024" json:"feedback"`
	User          User       `json:"user,omitempty"`
	GradedAt      *time.Time `json:"graded_at"`
}
