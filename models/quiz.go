package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz belongs to a lesson and holds an ordered set of questions.
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	LessonID  uint           `gorm:"index;not null" json:"lesson_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Questions []QuizQuestion `json:"questions,omitempty"`
}

// QuizQuestion is a multiple-choice question. Options is a JSON array of
// strings; CorrectIndex must never be serialized to students.
type QuizQuestion struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	QuizID       uint           `gorm:"index;not null" json:"quiz_id"`
	Prompt       string         `gorm:"type:text;not null" json:"prompt"`
	Options      datatypes.JSON `json:"options"`
	CorrectIndex int            `json:"-"`
	Position     int            `gorm:"default:0" json:"position"`
}

// QuizAttempt stores one graded submission. Answers is a JSON array of
// selected option indexes aligned with question positions.
type QuizAttempt struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	QuizID    uint           `gorm:"index;not null" json:"quiz_id"`
	Answers   datatypes.JSON `json:"answers"`
	Score     int            `json:"score"`
	MaxScore  int            `json:"max_score"`
	CreatedAt time.Time      `json:"created_at"`
}

// GradeQuiz compares submitted answer indexes against question keys.
// Questions must be in position order; missing or out-of-range answers
// count as wrong. Returns the score and the maximum attainable score.
func GradeQuiz(questions []QuizQuestion, answers []int) (score, maxScore int) {
	maxScore = len(questions)
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score, maxScore
}

// MarshalAnswers encodes answer indexes for storage.
func MarshalAnswers(answers []int) datatypes.JSON {
	b, _ := json.Marshal(answers)
	return datatypes.JSON(b)
}
