package gamification

import (
	"testing"

	"github.com/studyhall/studyhall/models"
)

var testCatalog = []models.Badge{
	{ID: 1, Name: "Bronze", XPRequired: 10},
	{ID: 2, Name: "Silver", XPRequired: 100},
	{ID: 3, Name: "Gold", XPRequired: 500},
}

func TestUnlockableBadgesNoneQualify(t *testing.T) {
	got := UnlockableBadges(5, testCatalog, map[uint]bool{})
	if len(got) != 0 {
		t.Errorf("expected no unlocks, got %v", got)
	}
}

func TestUnlockableBadgesMultipleAtOnce(t *testing.T) {
	got := UnlockableBadges(600, testCatalog, map[uint]bool{})
	if len(got) != 3 {
		t.Fatalf("expected 3 unlocks, got %d", len(got))
	}
	// catalog order preserved
	if got[0].Name != "Bronze" || got[1].Name != "Silver" || got[2].Name != "Gold" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestUnlockableBadgesSkipsEarned(t *testing.T) {
	got := UnlockableBadges(150, testCatalog, map[uint]bool{1: true})
	if len(got) != 1 || got[0].Name != "Silver" {
		t.Errorf("expected only Silver, got %v", got)
	}
}

func TestUnlockableBadgesExactThreshold(t *testing.T) {
	got := UnlockableBadges(10, testCatalog, map[uint]bool{})
	if len(got) != 1 || got[0].Name != "Bronze" {
		t.Errorf("expected Bronze at exact threshold, got %v", got)
	}
}
