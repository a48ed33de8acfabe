package gamification

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		points int
		want   int
	}{
		{0, 1},
		{1, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{250, 3},
		{1000, 11},
	}
	for _, c := range cases {
		if got := Level(c.points); got != c.want {
			t.Errorf("Level(%d) = %d, want %d", c.points, got, c.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := Level(0)
	for x := 1; x <= 1000; x++ {
		cur := Level(x)
		if cur < prev {
			t.Fatalf("Level decreased at %d: %d -> %d", x, prev, cur)
		}
		prev = cur
	}
}

func TestLevelNegativeClamped(t *testing.T) {
	if got := Level(-5); got != 1 {
		t.Errorf("Level(-5) = %d, want 1", got)
	}
}
