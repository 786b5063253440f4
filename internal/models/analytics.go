package models

// Ranking and trend bounds.
const (
	TopEntityLimit      = 10
	RecommendationLimit = 5

	TrendMinYear = 1980
	TrendMaxYear = 2020
)

// TrendPoint is the publication count for a keyword in one year.
type TrendPoint struct {
	Year             int `json:"year" bson:"_id"`
	PublicationCount int `json:"publication_count" bson:"count"`
}

// ProfessorScore ranks a professor by keyword-relevant citation (KRC).
type ProfessorScore struct {
	Professor string  `json:"professor"`
	Institute string  `json:"institute"`
	KRC       float64 `json:"krc"`
}

// KeywordInterest counts the faculty of an institute interested in a keyword.
type KeywordInterest struct {
	Keyword        string `json:"keyword"`
	ProfessorCount int64  `json:"professor_count"`
}

// KeywordScore ranks a keyword of one professor by KRC.
type KeywordScore struct {
	Keyword string  `json:"keyword"`
	KRC     float64 `json:"krc"`
}

// RecommendedProfessor is a professor ranked by total KRC over the favorite keywords.
type RecommendedProfessor struct {
	Professor string  `json:"professor"`
	Institute string  `json:"institute"`
	TotalKRC  float64 `json:"total_krc"`
}

// RecommendedUniversity is an institute ranked by total KRC over the favorite keywords.
type RecommendedUniversity struct {
	Institute             string  `json:"institute"`
	RelatedProfessorCount int64   `json:"related_professor_count"`
	TotalKRC              float64 `json:"total_krc"`
}
