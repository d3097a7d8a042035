// Package types provides type definitions for structured data used throughout the resume-rag system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Bullet is a single candidate text item owned by a resume section.
type Bullet struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"required"`
}

// SelectedBullet is a bullet chosen for the tailored resume.
// Original, Rewritten and Reasoning are only set once the bullet has been rewritten.
type SelectedBullet struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevanceScore"`
	LineCount      int     `json:"lineCount"`
	Original       string  `json:"original,omitempty"`
	Rewritten      string  `json:"rewritten,omitempty"`
	Reasoning      string  `json:"reasoning,omitempty"`
}

// ScoredText pairs a text with a similarity or relevance score.
type ScoredText struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Texts returns the text of every scored entry in order.
func Texts(items []ScoredText) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Text
	}
	return out
}

// ScoreMap indexes scores by text. Later duplicates overwrite earlier ones.
func ScoreMap(items []ScoredText) map[string]float64 {
	out := make(map[string]float64, len(items))
	for _, item := range items {
		out[item.Text] = item.Score
	}
	return out
}
