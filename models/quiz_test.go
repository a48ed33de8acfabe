package models

import "testing"

func TestGradeQuiz(t *testing.T) {
	questions := []QuizQuestion{
		{CorrectIndex: 0},
		{CorrectIndex: 2},
		{CorrectIndex: 1},
	}

	tests := []struct {
		name    string
		answers []int
		score   int
	}{
		{"all correct", []int{0, 2, 1}, 3},
		{"all wrong", []int{1, 0, 0}, 0},
		{"partial", []int{0, 0, 1}, 2},
		{"short answer list", []int{0}, 1},
		{"extra answers ignored", []int{0, 2, 1, 3, 3}, 3},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, maxScore := GradeQuiz(questions, tt.answers)
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
			if maxScore != len(questions) {
				t.Errorf("maxScore = %d, want %d", maxScore, len(questions))
			}
		})
	}
}

func TestGradeQuizNoQuestions(t *testing.T) {
	score, maxScore := GradeQuiz(nil, []int{0, 1})
	if score != 0 || maxScore != 0 {
		t.Errorf("got score=%d max=%d, want 0/0", score, maxScore)
	}
}
