package selection

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-rag/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultCharsPerLine is the average characters per rendered resume line.
	DefaultCharsPerLine = 70
	// DefaultMaxLines is the line budget of a one-page resume.
	DefaultMaxLines = 50
	// bulletIndent accounts for the bullet marker and indentation.
	bulletIndent = 4
	// sectionHeaderLines is the space taken by each non-empty section heading.
	sectionHeaderLines = 2
	maxGaps            = 5
)

// gapKeywords are the skills checked by IdentifyGaps, in report order.
var gapKeywords = []string{
	"python", "javascript", "react", "node", "aws", "kubernetes",
	"docker", "microservices", "api", "sql", "mongodb", "postgresql",
	"machine learning", "ai", "ml", "tensorflow", "pytorch",
}

// EstimateLines estimates how many rendered lines a bullet takes.
// Empty text takes no lines.
func EstimateLines(text string, charsPerLine int) int {
	if text == "" {
		return 0
	}
	if charsPerLine <= 0 {
		charsPerLine = DefaultCharsPerLine
	}
	return max(1, (utf8.RuneCountInString(text)+bulletIndent)/charsPerLine+1)
}

// TotalLines estimates the rendered length of a selected resume: every bullet
// counts at least one line and every section with bullets adds a heading.
func TotalLines(resume *types.SelectedResume) int {
	if resume == nil {
		return 0
	}
	total := 0
	for _, group := range resume.BulletGroups() {
		for _, b := range group {
			total += max(1, b.LineCount)
		}
		if len(group) > 0 {
			total += sectionHeaderLines
		}
	}
	return total
}

// IdentifyGaps lists skills the job asks for that no selected experience
// bullet mentions, title-cased, at most five.
func IdentifyGaps(resume *types.SelectedResume, job string) []string {
	jobLower := strings.ToLower(job)

	var sb strings.Builder
	if resume != nil {
		for _, exp := range resume.Experiences {
			texts := make([]string, len(exp.SelectedBullets))
			for i, b := range exp.SelectedBullets {
				texts[i] = strings.ToLower(b.Text)
			}
			sb.WriteString(strings.Join(texts, " "))
		}
	}
	resumeText := sb.String()

	// Casers are stateful, so one is built per call.
	title := cases.Title(language.English)
	gaps := []string{}
	for _, kw := range gapKeywords {
		if strings.Contains(jobLower, kw) && !strings.Contains(resumeText, kw) {
			gaps = append(gaps, title.String(kw))
		}
		if len(gaps) == maxGaps {
			break
		}
	}
	return gaps
}
