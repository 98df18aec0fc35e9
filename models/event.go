package models

import (
	"time"
)

// Event groups the fights of one card. Date is stored in UTC: it locks picks once
// in the past and buckets the event into a season (calendar year) for leaderboards.
type Event struct {
	ID    string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name  string    `json:"name" gorm:"not null"`
	Slug  string    `json:"slug" gorm:"uniqueIndex;not null"`
	Date  time.Time `json:"date" gorm:"not null;index"`
	Image string    `json:"image,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Fights []Fight `json:"fights,omitempty" gorm:"foreignKey:EventID"`

	// Calculated, not stored
	FightCount int64 `json:"fight_count,omitempty" gorm:"-"`
}

// Locked reports whether picks for this event can still be changed.
func (e *Event) Locked(now time.Time) bool {
	return now.After(e.Date)
}

// Winner sides and result methods as persisted on fights and picks.
const (
	WinnerSideA = "A"
	WinnerSideB = "B"

	MethodKO  = "KO"
	MethodSub = "SUB"
	MethodDec = "DEC"
)

// Fight is one bout on an event card. The result fields stay NULL until an admin
// records the outcome; they may be corrected later, which re-triggers scoring.
type Fight struct {
	ID              string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID         string  `json:"event_id" gorm:"not null;index"`
	FighterA        string  `json:"fighter_a" gorm:"not null"`
	FighterB        string  `json:"fighter_b" gorm:"not null"`
	Order           int     `json:"order" gorm:"column:sort_order;default:0"`
	ScheduledRounds int     `json:"scheduled_rounds" gorm:"default:3"`

	// Official result. Winner is "A" or "B"; Round is 0 for decisions.
	Winner *string `json:"winner,omitempty" gorm:"type:varchar(1)"`
	Method *string `json:"method,omitempty" gorm:"type:varchar(8)"`
	Round  *int    `json:"round,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Event Event  `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Picks []Pick `json:"picks,omitempty" gorm:"foreignKey:FightID"`
}

// HasCompleteResult reports whether the fight can be scored: winner and method set,
// and a round set unless the fight went to a decision.
func (f *Fight) HasCompleteResult() bool {
	if f.Winner == nil || f.Method == nil {
		return false
	}
	if *f.Method == MethodDec {
		return true
	}
	return f.Round != nil
}
