package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrGiveawayEnded    = errors.New("giveaway has already ended")
	ErrGiveawayNotEnded = errors.New("giveaway has not ended yet")
	ErrEmptyPrize       = errors.New("prize cannot be empty")
	ErrInvalidUserID    = errors.New("user id must be positive")
)

// Giveaway is the document persisted per campaign. The document id doubles
// as the store key and is normally the posted-message identifier.
type Giveaway struct {
	ID        string `json:"id"`
	GuildID   int64  `json:"guild_id"`
	ChannelID int64  `json:"channel_id"`
	MessageID int64  `json:"message_id"`

	Prize        string `json:"prize"`
	WinnersCount int    `json:"winner_count"`
	HostID       int64  `json:"host_id"`

	// EndTime is fixed at creation and never mutated afterwards.
	EndTime int64 `json:"end_time"`

	Entries   []int64 `json:"entries"`
	Ended     bool    `json:"ended"`
	WinnerIDs []int64 `json:"winner_ids"`
	EndedTime int64   `json:"ended_time,omitempty"`
}

// Expired reports whether an open giveaway has passed its end time.
func (g *Giveaway) Expired(now time.Time) bool {
	return !g.Ended && g.EndTime > 0 && now.Unix() >= g.EndTime
}

// HasEntry reports whether userID is currently registered.
func (g *Giveaway) HasEntry(userID int64) bool {
	for _, id := range g.Entries {
		if id == userID {
			return true
		}
	}
	return false
}

// AddEntry registers userID. Duplicate and non-positive ids are refused, so
// Entries never holds the same user twice.
func (g *Giveaway) AddEntry(userID int64) {
	if userID <= 0 || g.HasEntry(userID) {
		return
	}
	g.Entries = append(g.Entries, userID)
}

// RemoveEntry unregisters userID, preserving the order of the remaining
// entries.
func (g *Giveaway) RemoveEntry(userID int64) {
	out := g.Entries[:0]
	for _, id := range g.Entries {
		if id != userID {
			out = append(out, id)
		}
	}
	g.Entries = out
}

// ClampWinners bounds a requested winner count to [1, max].
func ClampWinners(count, max int) int {
	if count < 1 {
		return 1
	}
	if count > max {
		return max
	}
	return count
}

// TrimPrize normalizes prize text: surrounding whitespace removed and the
// result truncated to at most maxLen bytes on a rune boundary, so the cut
// never produces invalid UTF-8. Over-long prizes are cut, not rejected.
func TrimPrize(prize string, maxLen int) string {
	prize = strings.TrimSpace(prize)
	if len(prize) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(prize[cut]) {
			cut--
		}
		prize = prize[:cut]
	}
	return prize
}

// GiveawayCreate carries the validated inputs of a create command. HostID
// is resolved from the authenticated caller, not the request body.
type GiveawayCreate struct {
	GuildID      int64  `json:"guild_id" binding:"required"`
	ChannelID    int64  `json:"channel_id" binding:"required"`
	HostID       int64  `json:"-"`
	Duration     string `json:"duration" binding:"required"`
	Prize        string `json:"prize" binding:"required"`
	WinnersCount int    `json:"winner_count"`
}

// ToggleResult tells the presentation layer which way a toggle went.
type ToggleResult struct {
	GiveawayID string `json:"giveaway_id"`
	UserID     int64  `json:"user_id"`
	Joined     bool   `json:"joined"`
	Entries    int    `json:"entries"`
}
