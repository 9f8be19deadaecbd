package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		g    Giveaway
		want bool
	}{
		{"open and past end", Giveaway{EndTime: now.Unix() - 1}, true},
		{"open at exact end", Giveaway{EndTime: now.Unix()}, true},
		{"open before end", Giveaway{EndTime: now.Unix() + 60}, false},
		{"already ended", Giveaway{EndTime: now.Unix() - 1, Ended: true}, false},
		{"zero end time", Giveaway{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.g.Expired(now))
		})
	}
}

func TestEntryToggleRoundTrip(t *testing.T) {
	g := Giveaway{Entries: []int64{10, 20}}

	g.AddEntry(30)
	assert.True(t, g.HasEntry(30))

	g.RemoveEntry(30)
	assert.Equal(t, []int64{10, 20}, g.Entries)
}

func TestAddEntryRefusesDuplicatesAndInvalid(t *testing.T) {
	g := Giveaway{}
	g.AddEntry(5)
	g.AddEntry(5)
	g.AddEntry(0)
	g.AddEntry(-3)
	assert.Equal(t, []int64{5}, g.Entries)
}

func TestRemoveEntryKeepsOrder(t *testing.T) {
	g := Giveaway{Entries: []int64{1, 2, 3, 4}}
	g.RemoveEntry(2)
	assert.Equal(t, []int64{1, 3, 4}, g.Entries)
}

func TestClampWinners(t *testing.T) {
	assert.Equal(t, 1, ClampWinners(0, 20))
	assert.Equal(t, 1, ClampWinners(-5, 20))
	assert.Equal(t, 20, ClampWinners(50, 20))
	assert.Equal(t, 7, ClampWinners(7, 20))
}

func TestTrimPrize(t *testing.T) {
	assert.Equal(t, "Cup", TrimPrize("  Cup  ", 120))
	assert.Equal(t, "abcde", TrimPrize("abcdefgh", 5))
	assert.Equal(t, "", TrimPrize("   ", 120))
}

func TestTrimPrizeRuneBoundary(t *testing.T) {
	// "é" is two bytes; a cut at 5 falls inside the third rune and must
	// back off to the previous boundary.
	got := TrimPrize("ééé", 5)
	assert.Equal(t, "éé", got)
	assert.True(t, utf8.ValidString(got))

	got = TrimPrize(strings.Repeat("🎉", 10), 10)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 10)
	assert.Equal(t, "🎉🎉", got)
}
