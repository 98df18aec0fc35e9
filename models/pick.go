package models

// Pick is one user's prediction for one fight. A user holds at most one pick per
// fight; re-submitting before lock updates it in place.
type Pick struct {
	ID      string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID  string `json:"user_id" gorm:"not null;uniqueIndex:idx_user_fight_pick"`
	FightID string `json:"fight_id" gorm:"not null;uniqueIndex:idx_user_fight_pick;index"`

	// Prediction: winner side ("A"/"B"), method, and round (0 for decision picks).
	Winner string `json:"winner" gorm:"type:varchar(1);not null"`
	Method string `json:"method" gorm:"type:varchar(8);not null"`
	Round  int    `json:"round" gorm:"default:0"`

	// Points stays NULL until the fight has a complete result. RuleVersion records
	// which scoring generation produced the stored value, so historical scores are
	// never silently reinterpreted when the rules change.
	Points      *int `json:"points,omitempty"`
	RuleVersion int  `json:"rule_version,omitempty" gorm:"default:0"`

	Timestamps

	Fight Fight `json:"fight,omitempty" gorm:"foreignKey:FightID"`
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
