// Package pipeline composes retrieval, selection and rewriting into the
// request flows served by the CLI and the HTTP server.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/ranking"
	"github.com/jonathan/resume-rag/internal/results"
	"github.com/jonathan/resume-rag/internal/rewriting"
	"github.com/jonathan/resume-rag/internal/selection"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
)

// Version reported by Stats and Health.
const Version = "3.0.0"

const serviceName = "RAG Pipeline (Unified Optimizer)"

// ProgressEvent represents a progress update during a flow
type ProgressEvent struct {
	Step    string `json:"step"`
	Flow    string `json:"flow"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Store is the vector store as used by the pipeline.
type Store interface {
	ranking.Retriever
	Add(ctx context.Context, texts []string) error
	Clear(ctx context.Context) error
	Collection() string
	Backend() string
}

// Rewriter runs one optimization call.
type Rewriter interface {
	Optimize(ctx context.Context, items []string, job string, mode types.Mode, similarity map[string]float64, opts ...rewriting.CallOption) (*rewriting.Outcome, error)
	Model() string
}

// Deps holds the components a Service is built from. Recorder may be nil.
type Deps struct {
	Store          Store
	Selector       *selection.Selector
	Rewriter       Rewriter
	Recorder       *results.Recorder
	EmbeddingModel string
	MaxLines       int
	Logger         *zap.Logger
	OnProgress     ProgressCallback
}

// Service runs the flat, select and optimize flows.
type Service struct {
	store          Store
	ranker         *ranking.Ranker
	selector       *selection.Selector
	rewriter       Rewriter
	recorder       *results.Recorder
	embeddingModel string
	maxLines       int
	logger         *zap.Logger
	onProgress     ProgressCallback
	now            func() time.Time
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	logger := observability.OrNop(deps.Logger)
	maxLines := deps.MaxLines
	if maxLines <= 0 {
		maxLines = selection.DefaultMaxLines
	}
	selector := deps.Selector
	if selector == nil {
		selector = selection.NewSelector(nil, selection.WithLogger(logger))
	}
	return &Service{
		store:          deps.Store,
		ranker:         ranking.NewRanker(deps.Store, logger),
		selector:       selector,
		rewriter:       deps.Rewriter,
		recorder:       deps.Recorder,
		embeddingModel: deps.EmbeddingModel,
		maxLines:       maxLines,
		logger:         logger,
		onProgress:     deps.OnProgress,
		now:            time.Now,
	}
}

type progressKey struct{}

// WithProgress returns a context whose flows also report progress to cb.
func WithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

func (s *Service) emit(ctx context.Context, flow, step, message string, content any) {
	event := ProgressEvent{Step: step, Flow: flow, Message: message, Content: content}
	if s.onProgress != nil {
		s.onProgress(event)
	}
	if cb, ok := ctx.Value(progressKey{}).(ProgressCallback); ok && cb != nil {
		cb(event)
	}
}

// Rank returns the top points for a job description without rewriting them.
func (s *Service) Rank(ctx context.Context, job string, topK int, useHybrid bool) ([]types.ScoredText, error) {
	return s.ranker.Rank(ctx, job, topK, useHybrid)
}

// OptimizeFlat retrieves the indexed points closest to the job description
// and rewrites them with one optimization call. Retrieval and provider
// failures degrade to partial responses instead of errors.
func (s *Service) OptimizeFlat(ctx context.Context, req types.RAGRequest) (*types.RAGResponse, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	s.emit(ctx, "flat", "retrieve", "retrieving relevant points", nil)
	retrieved, err := s.ranker.Rank(ctx, req.JobDescription, req.TopK, req.Hybrid())
	if err != nil {
		s.logger.Warn("retrieval failed", zap.Error(err))
		retrieved = nil
	}

	resp := &types.RAGResponse{
		JobDescription:       req.JobDescription,
		RetrievedPoints:      types.Texts(retrieved),
		RewrittenPoints:      []types.RewrittenPoint{},
		Gaps:                 []string{},
		NewBulletSuggestions: []string{},
	}
	if len(retrieved) == 0 {
		s.logger.Info("no points retrieved", zap.String("job", observability.TruncateForLog(req.JobDescription, 80)))
		s.finishFlat(resp, start)
		return resp, nil
	}
	s.emit(ctx, "flat", "retrieve", fmt.Sprintf("retrieved %d points", len(retrieved)), resp.RetrievedPoints)

	scores := types.ScoreMap(retrieved)
	s.emit(ctx, "flat", "rewrite", "optimizing retrieved points", nil)
	outcome, err := s.rewriter.Optimize(ctx, resp.RetrievedPoints, req.JobDescription,
		req.OptimizationMode, scores, rewriting.WithStyle(req.RewriteStyle))
	if err != nil {
		s.logger.Error("optimization failed", zap.Error(err))
		s.finishFlat(resp, start)
		return resp, nil
	}

	for _, r := range outcome.Rankings {
		similarity, ok := scores[r.Original]
		if !ok {
			similarity = r.RelevanceScore
		}
		resp.RewrittenPoints = append(resp.RewrittenPoints, types.RewrittenPoint{
			Original:        r.Original,
			Rewritten:       r.Rewritten,
			SimilarityScore: round3(similarity),
			Reasoning:       r.Reasoning,
		})
	}
	resp.Gaps = outcome.Gaps
	if req.OptimizationMode == types.ModeCreative {
		resp.NewBulletSuggestions = outcome.NewItems
	}

	s.finishFlat(resp, start)
	s.recorder.Record(results.KindRAG, toPayload(resp))
	s.emit(ctx, "flat", "done", "optimization complete", resp)
	return resp, nil
}

func (s *Service) finishFlat(resp *types.RAGResponse, start time.Time) {
	resp.ProcessingTime = s.now().Sub(start).Seconds()
	resp.CreatedAt = s.now()
}

// Select picks the most relevant bullets of every resume section and reports
// the line estimate and coverage gaps.
func (s *Service) Select(ctx context.Context, req types.SelectionRequest) (*types.SelectionResponse, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	s.emit(ctx, "select", "select", "selecting bullets", nil)
	selected := s.selector.SelectResume(ctx, req.Resume, req.JobDescription, req.Limits())
	resp := s.selectionResponse("select", selected, req.JobDescription, start)
	resp.SelectedResume = selected
	s.emit(ctx, "select", "done", "selection complete", resp)
	return resp, nil
}

// Optimize selects bullets like Select, then rewrites each section's
// selection in strict mode. A section whose rewrite fails keeps its selected
// bullets unchanged.
func (s *Service) Optimize(ctx context.Context, req types.OptimizationRequest) (*types.SelectionResponse, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	s.emit(ctx, "optimize", "select", "selecting bullets", nil)
	resume := s.selector.SelectResume(ctx, req.Resume, req.JobDescription, req.Limits())

	s.emit(ctx, "optimize", "rewrite", "rewriting selected bullets", nil)
	for i := range resume.Experiences {
		resume.Experiences[i].SelectedBullets = s.rewriteSection(ctx, resume.Experiences[i].SelectedBullets, req)
	}
	for i := range resume.Education {
		resume.Education[i].SelectedBullets = s.rewriteSection(ctx, resume.Education[i].SelectedBullets, req)
	}
	for i := range resume.Projects {
		resume.Projects[i].SelectedBullets = s.rewriteSection(ctx, resume.Projects[i].SelectedBullets, req)
	}
	for i := range resume.CustomSections {
		resume.CustomSections[i].SelectedBullets = s.rewriteSection(ctx, resume.CustomSections[i].SelectedBullets, req)
	}

	resp := s.selectionResponse("optimize", resume, req.JobDescription, start)
	resp.OptimizedResume = resume

	s.recorder.Record(results.KindOptimization, map[string]any{
		"mode":             resp.Mode,
		"job_description":  req.JobDescription,
		"optimized_resume": toPayload(resume),
		"total_line_count": resp.TotalLineCount,
		"fits_one_page":    resp.FitsOnePage,
		"gaps":             resp.Gaps,
		"processing_time":  resp.ProcessingTime,
	})
	s.emit(ctx, "optimize", "done", "optimization complete", resp)
	return resp, nil
}

// rewriteSection rewrites bullets in strict mode, matching rewrites back by
// their exact original text. Bullets the provider skipped keep their text.
func (s *Service) rewriteSection(ctx context.Context, bullets []types.SelectedBullet, req types.OptimizationRequest) []types.SelectedBullet {
	if len(bullets) == 0 {
		return bullets
	}

	texts := make([]string, len(bullets))
	scores := make(map[string]float64, len(bullets))
	for i, b := range bullets {
		texts[i] = b.Text
		scores[b.Text] = b.RelevanceScore
	}

	outcome, err := s.rewriter.Optimize(ctx, texts, req.JobDescription, types.ModeStrict, scores,
		rewriting.WithStyle(req.RewriteStyle))
	if err != nil {
		s.logger.Warn("section rewrite failed, keeping selection", zap.Error(err))
		return bullets
	}

	byOriginal := make(map[string]rewriting.Ranking, len(outcome.Rankings))
	for _, r := range outcome.Rankings {
		byOriginal[r.Original] = r
	}

	out := make([]types.SelectedBullet, len(bullets))
	for i, b := range bullets {
		rewritten, reasoning := b.Text, ""
		if r, ok := byOriginal[b.Text]; ok {
			rewritten, reasoning = r.Rewritten, r.Reasoning
		}
		out[i] = types.SelectedBullet{
			ID:             b.ID,
			Text:           rewritten,
			RelevanceScore: b.RelevanceScore,
			LineCount:      b.LineCount,
			Original:       b.Text,
			Rewritten:      rewritten,
			Reasoning:      reasoning,
		}
	}
	return out
}

func (s *Service) selectionResponse(mode string, resume *types.SelectedResume, job string, start time.Time) *types.SelectionResponse {
	total := selection.TotalLines(resume)
	return &types.SelectionResponse{
		Mode:           mode,
		TotalLineCount: total,
		MaxLines:       s.maxLines,
		FitsOnePage:    total <= s.maxLines,
		Gaps:           selection.IdentifyGaps(resume, job),
		ProcessingTime: s.now().Sub(start).Seconds(),
		CreatedAt:      s.now(),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
