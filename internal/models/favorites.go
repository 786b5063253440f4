package models

// Favorite mutation actions.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// FavoritesView is the favorite keyword list together with the recommendations
// computed from it. Changed reports whether the request mutated the list.
// Degraded is set when the recommendations could not be recomputed and are empty.
type FavoritesView struct {
	Keywords     []string                `json:"keywords"`
	Professors   []RecommendedProfessor  `json:"professors"`
	Universities []RecommendedUniversity `json:"universities"`
	Changed      bool                    `json:"changed"`
	Degraded     bool                    `json:"degraded,omitempty"`
}
