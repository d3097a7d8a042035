package rewriting

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-rag/internal/prompts"
	"github.com/jonathan/resume-rag/internal/types"
)

const promptFile = "rewrite.json"

// BuildPrompt renders the single optimization prompt. Items are numbered from
// 1 and annotated with their similarity score when one is known.
func BuildPrompt(items []string, job string, mode types.Mode, similarity map[string]float64, style string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		annotation := ""
		if score, ok := similarity[item]; ok {
			annotation = fmt.Sprintf(" (similarity: %.2f)", score)
		}
		lines[i] = fmt.Sprintf("%d. %s%s", i+1, item, annotation)
	}

	modeKey := "mode-strict"
	if mode == types.ModeCreative {
		modeKey = "mode-creative"
	}
	if style == "" {
		style = types.DefaultRewriteStyle
	}

	return prompts.Format(prompts.MustGet(promptFile, "optimize"), map[string]string{
		"JobDescription":   job,
		"Bullets":          strings.Join(lines, "\n"),
		"ModeInstructions": prompts.MustGet(promptFile, modeKey),
		"Style":            style,
	})
}

// SystemPrompt is the system instruction sent with every optimization call.
func SystemPrompt() string {
	return prompts.MustGet(promptFile, "system")
}
