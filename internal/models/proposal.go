package models

import (
	"time"
)

// AnonymousAuthor marks proposals submitted without a session.
const AnonymousAuthor = "anonymous"

// Location is a single map point picked by the submitter.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Proposal struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    Category  `gorm:"size:20;not null;index" json:"category"`
	VoteCount   int64     `gorm:"not null;default:0;index" json:"votes"` // only ever changed by vote_count + 1
	ImageURLs   []string  `gorm:"serializer:json" json:"image_urls"`
	Location    *Location `gorm:"serializer:json" json:"location,omitempty"`
	AuthorID    string    `gorm:"size:64;not null;index" json:"author_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	// Not persisted; filled for detail responses.
	DescriptionHTML string `gorm:"-" json:"description_html,omitempty"`
}
