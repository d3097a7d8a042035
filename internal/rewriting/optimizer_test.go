package rewriting

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/resume-rag/internal/llm"
	"github.com/jonathan/resume-rag/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	requests []llm.Request
}

func (f *fakeClient) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.response, f.err
}
func (f *fakeClient) Model() string { return "fake-model" }
func (f *fakeClient) Close() error  { return nil }

const fullResponse = `{
  "rankings": [
    {"original": "Built APIs", "rewritten": "Built REST APIs in Go", "relevance_score": 0.9, "improvement_reasoning": "added keywords"},
    {"original": "Led team", "rewritten": "Led a team of 5 engineers", "relevance_score": 0.6}
  ],
  "gaps": ["Kubernetes"],
  "new_bullets": ["Deployed services on Kubernetes"]
}`

func TestOptimize_CreativeKeepsNewItems(t *testing.T) {
	client := &fakeClient{response: fullResponse}
	o := NewOptimizer(client)

	out, err := o.Optimize(context.Background(), []string{"Built APIs", "Led team"}, "Go engineer", types.ModeCreative, nil)
	require.NoError(t, err)
	require.Len(t, out.Rankings, 2)
	assert.Equal(t, "Built REST APIs in Go", out.Rankings[0].Rewritten)
	assert.Equal(t, "added keywords", out.Rankings[0].Reasoning)
	assert.Equal(t, []string{"Kubernetes"}, out.Gaps)
	assert.Equal(t, []string{"Deployed services on Kubernetes"}, out.NewItems)
	assert.Empty(t, out.Degraded)
}

func TestOptimize_StrictDropsNewItems(t *testing.T) {
	client := &fakeClient{response: fullResponse}
	o := NewOptimizer(client)

	out, err := o.Optimize(context.Background(), []string{"Built APIs", "Led team"}, "Go engineer", types.ModeStrict, nil)
	require.NoError(t, err)
	assert.NotNil(t, out.NewItems)
	assert.Empty(t, out.NewItems)
	assert.Len(t, out.Rankings, 2)
}

func TestOptimize_CallSettings(t *testing.T) {
	client := &fakeClient{response: `{"rankings": []}`}
	o := NewOptimizer(client)

	_, err := o.Optimize(context.Background(), []string{"a"}, "job", types.ModeStrict, map[string]float64{"a": 0.871})
	require.NoError(t, err)
	require.Len(t, client.requests, 1)

	req := client.requests[0]
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Equal(t, 3000, req.MaxTokens)
	assert.Contains(t, req.System, "valid JSON only")
	assert.Contains(t, req.Prompt, "1. a (similarity: 0.87)")
}

func TestOptimize_DegradedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
		reason   string
	}{
		{"not json", "I cannot help with that", DegradedParse},
		{"truncated json", `{"rankings": [{"original": "a"`, DegradedParse},
		{"missing rankings", `{"gaps": ["Go"]}`, DegradedSchema},
		{"ranking missing field", `{"rankings": [{"original": "a", "relevance_score": 0.5}]}`, DegradedSchema},
		{"score wrong type", `{"rankings": [{"original": "a", "rewritten": "b", "relevance_score": "high"}]}`, DegradedSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptimizer(&fakeClient{response: tt.response})
			out, err := o.Optimize(context.Background(), []string{"a"}, "job", types.ModeCreative, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.reason, out.Degraded)
			assert.Empty(t, out.Rankings)
			assert.Empty(t, out.Gaps)
			assert.Empty(t, out.NewItems)
		})
	}
}

func TestOptimize_FencedResponse(t *testing.T) {
	o := NewOptimizer(&fakeClient{response: "```json\n{\"rankings\": [{\"original\": \"a\", \"rewritten\": \"b\", \"relevance_score\": 0.5}]}\n```"})
	out, err := o.Optimize(context.Background(), []string{"a"}, "job", types.ModeStrict, nil)
	require.NoError(t, err)
	require.Len(t, out.Rankings, 1)
	assert.Equal(t, "b", out.Rankings[0].Rewritten)
}

func TestOptimize_ClampsScores(t *testing.T) {
	o := NewOptimizer(&fakeClient{response: `{"rankings": [
		{"original": "a", "rewritten": "a2", "relevance_score": 1.7},
		{"original": "b", "rewritten": "b2", "relevance_score": -0.2}
	]}`})
	out, err := o.Optimize(context.Background(), []string{"a", "b"}, "job", types.ModeStrict, nil)
	require.NoError(t, err)
	require.Len(t, out.Rankings, 2)
	assert.Equal(t, 1.0, out.Rankings[0].RelevanceScore)
	assert.Equal(t, 0.0, out.Rankings[1].RelevanceScore)
	assert.NotNil(t, out.Gaps)
	assert.NotNil(t, out.NewItems)
}

func TestOptimize_ProviderErrorPropagates(t *testing.T) {
	cause := errors.New("rate limited")
	o := NewOptimizer(&fakeClient{err: cause})

	out, err := o.Optimize(context.Background(), []string{"a"}, "job", types.ModeStrict, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, cause)

	var rerr *Error
	assert.True(t, errors.As(err, &rerr))
}

func TestOptimize_EmptyItemsSkipsCall(t *testing.T) {
	client := &fakeClient{response: fullResponse}
	out, err := NewOptimizer(client).Optimize(context.Background(), nil, "job", types.ModeCreative, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Rankings)
	assert.Empty(t, client.requests)
}

func TestOptimize_Options(t *testing.T) {
	client := &fakeClient{response: `{"rankings": []}`}
	o := NewOptimizer(client, WithTemperature(0.2), WithMaxTokens(500))
	_, err := o.Optimize(context.Background(), []string{"a"}, "job", types.ModeStrict, nil, WithStyle("concise"))
	require.NoError(t, err)
	assert.InDelta(t, 0.2, client.requests[0].Temperature, 1e-6)
	assert.Equal(t, 500, client.requests[0].MaxTokens)
	assert.Contains(t, client.requests[0].Prompt, "Use a concise tone")
	assert.Equal(t, "fake-model", o.Model())
}
