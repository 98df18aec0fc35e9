package models

import (
	"time"
)

// Badge: a named achievement definition (name unique)
type Badge struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
	Icon        string `json:"icon" gorm:"type:text"` // Lucide icon name or uploaded URL

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// UserBadge: awarded instance. (user, badge) pairs are unique — a badge is never
// granted twice to the same user; the index backs that up under concurrent grants.
type UserBadge struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge;index"`
	BadgeID   string    `json:"badge_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	AwardedAt time.Time `json:"awarded_at" gorm:"autoCreateTime"`

	Badge Badge `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
}

// Badge names granted by the evaluator and the annual award job.
const (
	BadgeFirstPick      = "First Pick"
	BadgePerfectEvent   = "Perfect Event"
	BadgeUnderdogHunter = "Underdog Hunter"
	BadgeVeteran        = "Veteran"
)

// BadgeCatalog is the static set of badge definitions seeded at startup.
// Year badges ("Best of 2025" etc.) are created on demand by the annual award job.
var BadgeCatalog = []Badge{
	{
		Name:        BadgeFirstPick,
		Description: "Made your first prediction.",
		Icon:        "Target",
	},
	{
		Name:        BadgePerfectEvent,
		Description: "Predicted all fights correctly in a single event.",
		Icon:        "Trophy",
	},
	{
		Name:        BadgeUnderdogHunter,
		Description: "Correctly predicted an underdog win.",
		Icon:        "Dog",
	},
	{
		Name:        BadgeVeteran,
		Description: "Participated in 5 events.",
		Icon:        "Medal",
	},
}
