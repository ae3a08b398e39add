package models

import (
	"time"
)

// Vote is keyed by (proposal_id, user_id). The composite primary key is the
// write-once guard: a second insert for the same pair fails at the database.
type Vote struct {
	ProposalID string    `gorm:"primaryKey;size:36" json:"proposal_id"`
	Proposal   Proposal  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	UserID     string    `gorm:"primaryKey;size:64" json:"user_id"`
	VotedAt    time.Time `gorm:"not null" json:"voted_at"`
}
