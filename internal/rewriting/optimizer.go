// Package rewriting ranks, rewrites and gap-checks a set of resume bullets
// with a single structured text-generation call.
package rewriting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonathan/resume-rag/internal/llm"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/schemas"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
)

// Reasons recorded in Outcome.Degraded.
const (
	DegradedParse  = "parse_error"
	DegradedSchema = "schema_violation"
)

// Ranking is the provider's verdict on one bullet.
type Ranking struct {
	Original       string  `json:"original"`
	Rewritten      string  `json:"rewritten"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"improvement_reasoning,omitempty"`
}

// Outcome is the validated result of one optimization call. Degraded is set
// when the provider answered but the answer was unusable; the outcome is then
// empty.
type Outcome struct {
	Rankings []Ranking `json:"rankings"`
	Gaps     []string  `json:"gaps"`
	NewItems []string  `json:"new_bullets"`
	Degraded string    `json:"-"`
}

func emptyOutcome(reason string) *Outcome {
	return &Outcome{
		Rankings: []Ranking{},
		Gaps:     []string{},
		NewItems: []string{},
		Degraded: reason,
	}
}

// Optimizer performs optimization calls against an llm.Client.
type Optimizer struct {
	client      llm.Client
	temperature float32
	maxTokens   int
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Optimizer) { o.temperature = t }
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithLogger sets the optimizer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) { o.logger = observability.OrNop(logger) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Optimizer) { o.metrics = m }
}

// NewOptimizer creates an Optimizer.
func NewOptimizer(client llm.Client, opts ...Option) *Optimizer {
	o := &Optimizer{
		client:      client,
		temperature: llm.DefaultTemperature,
		maxTokens:   llm.DefaultMaxTokens,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Model returns the provider model name.
func (o *Optimizer) Model() string {
	return o.client.Model()
}

type callOptions struct {
	style string
}

// CallOption adjusts a single Optimize call.
type CallOption func(*callOptions)

// WithStyle sets the tone requested for rewrites.
func WithStyle(style string) CallOption {
	return func(c *callOptions) { c.style = style }
}

// Optimize ranks and rewrites items for job in one provider call.
//
// Provider errors are returned. An answer that is not JSON or does not match
// the outcome schema yields an empty, degraded Outcome and no error. In strict
// mode NewItems is always empty.
func (o *Optimizer) Optimize(ctx context.Context, items []string, job string, mode types.Mode, similarity map[string]float64, opts ...CallOption) (*Outcome, error) {
	if len(items) == 0 {
		return emptyOutcome(""), nil
	}

	co := callOptions{style: types.DefaultRewriteStyle}
	for _, opt := range opts {
		opt(&co)
	}

	req := llm.Request{
		System:      SystemPrompt(),
		Prompt:      BuildPrompt(items, job, mode, similarity, co.style),
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	start := time.Now()
	raw, err := o.client.GenerateJSON(ctx, req)
	o.metrics.RecordRewriteCall(o.client.Model(), time.Since(start), err)
	if err != nil {
		return nil, &Error{Message: "provider call failed", Cause: err}
	}

	outcome := o.parse(raw)
	if mode != types.ModeCreative {
		outcome.NewItems = []string{}
	}

	o.logger.Debug("optimization complete",
		zap.Int("items", len(items)),
		zap.Int("rankings", len(outcome.Rankings)),
		zap.Int("gaps", len(outcome.Gaps)),
		zap.Int("new_items", len(outcome.NewItems)),
		zap.String("degraded", outcome.Degraded))
	return outcome, nil
}

// parse strips fences, validates against the outcome schema and decodes raw.
func (o *Optimizer) parse(raw string) *Outcome {
	doc := []byte(llm.CleanJSONBlock(raw))

	if err := schemas.Validate(schemas.OptimizationOutcome, doc); err != nil {
		reason := DegradedParse
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			reason = DegradedSchema
		}
		o.degrade(reason, raw, err)
		return emptyOutcome(reason)
	}

	var outcome Outcome
	if err := json.Unmarshal(doc, &outcome); err != nil {
		o.degrade(DegradedParse, raw, err)
		return emptyOutcome(DegradedParse)
	}

	for i := range outcome.Rankings {
		outcome.Rankings[i].RelevanceScore = clamp01(outcome.Rankings[i].RelevanceScore)
	}
	if outcome.Rankings == nil {
		outcome.Rankings = []Ranking{}
	}
	if outcome.Gaps == nil {
		outcome.Gaps = []string{}
	}
	if outcome.NewItems == nil {
		outcome.NewItems = []string{}
	}
	return &outcome
}

func (o *Optimizer) degrade(reason, raw string, err error) {
	o.metrics.RecordRewriteDegraded(reason)
	o.logger.Warn("unusable optimization response, returning empty outcome",
		zap.String("reason", reason),
		zap.String("response", observability.TruncateForLog(raw, 500)),
		zap.Error(err))
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
