package selection

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-rag/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestEstimateLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"short", "Led a team", 1},
		{"just under one line", strings.Repeat("x", 65), 1},
		{"wraps at seventy with indent", strings.Repeat("x", 66), 2},
		{"two lines", strings.Repeat("x", 100), 2},
		{"three lines", strings.Repeat("x", 136), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateLines(tt.text, DefaultCharsPerLine))
		})
	}
}

func TestEstimateLines_CustomWidth(t *testing.T) {
	assert.Equal(t, 2, EstimateLines("123456", 10))
	assert.Equal(t, 1, EstimateLines("12345", 10))
	assert.Equal(t, 1, EstimateLines("x", 0))
}

func TestTotalLines(t *testing.T) {
	resume := &types.SelectedResume{
		Experiences: []types.SelectedExperience{
			{SelectedBullets: []types.SelectedBullet{{LineCount: 2}, {LineCount: 1}}},
			{},
		},
		Education: []types.SelectedEducation{
			{SelectedBullets: []types.SelectedBullet{{LineCount: 0}}},
		},
		CustomSections: []types.SelectedCustomSection{
			{SelectedBullets: []types.SelectedBullet{{LineCount: 1}}},
		},
	}
	// experience: 3 + 2, education: 1 + 2, custom: 1 + 2
	assert.Equal(t, 11, TotalLines(resume))
	assert.Zero(t, TotalLines(nil))
	assert.Zero(t, TotalLines(&types.SelectedResume{}))
}

func TestIdentifyGaps(t *testing.T) {
	resume := &types.SelectedResume{
		Experiences: []types.SelectedExperience{
			{SelectedBullets: []types.SelectedBullet{{Text: "Built Python services on AWS"}}},
		},
	}

	gaps := IdentifyGaps(resume, "Python, AWS, Kubernetes and Machine Learning experience")
	assert.Equal(t, []string{"Kubernetes", "Machine Learning"}, gaps)
}

func TestIdentifyGaps_OnlyExperiencesCount(t *testing.T) {
	resume := &types.SelectedResume{
		Projects: []types.SelectedProject{
			{SelectedBullets: []types.SelectedBullet{{Text: "Docker tooling"}}},
		},
	}
	assert.Equal(t, []string{"Docker"}, IdentifyGaps(resume, "docker"))
}

func TestIdentifyGaps_CappedAtFive(t *testing.T) {
	job := "python javascript react node aws kubernetes docker"
	gaps := IdentifyGaps(&types.SelectedResume{}, job)
	assert.Equal(t, []string{"Python", "Javascript", "React", "Node", "Aws"}, gaps)
}

func TestIdentifyGaps_None(t *testing.T) {
	gaps := IdentifyGaps(nil, "friendly team player")
	assert.NotNil(t, gaps)
	assert.Empty(t, gaps)
}
