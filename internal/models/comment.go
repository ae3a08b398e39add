package models

import (
	"time"
)

type Comment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ProposalID string    `gorm:"size:36;not null;index:idx_comment_proposal_created,priority:1" json:"proposal_id"`
	Proposal   Proposal  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     string    `gorm:"size:64;not null" json:"user_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index:idx_comment_proposal_created,priority:2" json:"created_at"`
}
