package utils

import (
	"sort"
	"strconv"

	"colabora/internal/models"
)

// Medal is the podium classification of a leaderboard position.
type Medal string

const (
	MedalNone   Medal = ""
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

// RankedProposal is one leaderboard row.
type RankedProposal struct {
	Position int             `json:"position"`
	Medal    Medal           `json:"medal,omitempty"`
	Label    string          `json:"label"`
	Proposal models.Proposal `json:"proposal"`
}

// MedalFor depends on position only, never on the vote count: a three-way tie
// at the top still yields one gold, one silver and one bronze.
func MedalFor(position int) Medal {
	switch position {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	default:
		return MedalNone
	}
}

// PositionLabel is the text shown next to a row: a medal emoji on the podium,
// "N°" below it.
func PositionLabel(position int) string {
	switch MedalFor(position) {
	case MedalGold:
		return "🥇"
	case MedalSilver:
		return "🥈"
	case MedalBronze:
		return "🥉"
	}
	return strconv.Itoa(position) + "°"
}

// RanksBefore orders by vote count descending; ties go to the earlier
// proposal, then to the smaller id.
func RanksBefore(a, b models.Proposal) bool {
	if a.VoteCount != b.VoteCount {
		return a.VoteCount > b.VoteCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Rank projects a proposal snapshot into a leaderboard of at most limit rows
// (all rows when limit <= 0). The input slice is not modified.
func Rank(proposals []models.Proposal, limit int) []RankedProposal {
	sorted := make([]models.Proposal, len(proposals))
	copy(sorted, proposals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return RanksBefore(sorted[i], sorted[j])
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ranked := make([]RankedProposal, len(sorted))
	for i, p := range sorted {
		pos := i + 1
		ranked[i] = RankedProposal{
			Position: pos,
			Medal:    MedalFor(pos),
			Label:    PositionLabel(pos),
			Proposal: p,
		}
	}
	return ranked
}
