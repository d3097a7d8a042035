// Package selection picks the most relevant bullets of each resume section
// for a job description, without rewriting them.
package selection

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/resume-rag/internal/embedding"
	"github.com/jonathan/resume-rag/internal/observability"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
)

// Embedder produces embeddings for selection scoring.
type Embedder interface {
	Embed(ctx context.Context, text string) embedding.Result
	EmbedBatch(ctx context.Context, texts []string) [][]float32
}

// Selector scores bullets against a job description.
type Selector struct {
	embedder     Embedder
	charsPerLine int
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// Option configures a Selector.
type Option func(*Selector)

// WithCharsPerLine sets the line width used by line estimation.
func WithCharsPerLine(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.charsPerLine = n
		}
	}
}

// WithLogger sets the selector logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Selector) { s.logger = observability.OrNop(logger) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Selector) { s.metrics = m }
}

// NewSelector creates a Selector. A nil embedder scores every bullet by word overlap.
func NewSelector(embedder Embedder, opts ...Option) *Selector {
	s := &Selector{
		embedder:     embedder,
		charsPerLine: DefaultCharsPerLine,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JobEmbedding embeds the job description once so every section can share it.
// It returns nil when the embedding failed or has zero magnitude.
func (s *Selector) JobEmbedding(ctx context.Context, job string) []float32 {
	if s.embedder == nil {
		return nil
	}
	res := s.embedder.Embed(ctx, job)
	if !res.OK {
		s.metrics.RecordEmbeddingFallback("selection", "job_embedding_failed")
		s.logger.Warn("job embedding failed, selecting by word overlap", zap.Error(res.Err))
		return nil
	}
	if embedding.Norm(res.Vector) == 0 {
		s.metrics.RecordEmbeddingFallback("selection", "job_embedding_zero")
		s.logger.Warn("job embedding has zero magnitude, selecting by word overlap")
		return nil
	}
	return res.Vector
}

type scoredBullet struct {
	bullet types.Bullet
	score  float64
}

// Select returns the topN bullets ordered by relevance to job, highest first.
// When jobVec is set, bullets are embedded in one batch and scored by cosine
// similarity; bullets without a usable vector fall back to word overlap.
func (s *Selector) Select(ctx context.Context, bullets []types.Bullet, job string, topN int, jobVec []float32) []types.SelectedBullet {
	if len(bullets) == 0 || topN <= 0 {
		return []types.SelectedBullet{}
	}

	var vectors [][]float32
	if jobVec != nil && s.embedder != nil {
		texts := make([]string, len(bullets))
		for i, b := range bullets {
			texts[i] = b.Text
		}
		vectors = s.embedder.EmbedBatch(ctx, texts)
	}

	scored := make([]scoredBullet, len(bullets))
	for i, b := range bullets {
		score, ok := 0.0, false
		if i < len(vectors) && embedding.Norm(vectors[i]) > 0 {
			score, ok = embedding.CosineSimilarity(vectors[i], jobVec), true
		}
		if !ok {
			if vectors != nil {
				s.metrics.RecordEmbeddingFallback("selection", "bullet_embedding_missing")
				s.logger.Warn("bullet embedding unavailable, using word overlap",
					zap.String("bullet", observability.TruncateForLog(b.Text, 50)))
			}
			score = WordOverlap(b.Text, job)
		}
		scored[i] = scoredBullet{bullet: b, score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}

	selected := make([]types.SelectedBullet, len(scored))
	for i, sb := range scored {
		selected[i] = types.SelectedBullet{
			ID:             sb.bullet.ID,
			Text:           sb.bullet.Text,
			RelevanceScore: round3(sb.score),
			LineCount:      EstimateLines(sb.bullet.Text, s.charsPerLine),
		}
	}
	return selected
}

// SelectResume selects bullets for every section of resume, sharing one job
// embedding across all sections.
func (s *Selector) SelectResume(ctx context.Context, resume types.StructuredResume, job string, limits types.SectionLimits) *types.SelectedResume {
	jobVec := s.JobEmbedding(ctx, job)

	out := &types.SelectedResume{
		Experiences:    make([]types.SelectedExperience, 0, len(resume.Experiences)),
		Education:      make([]types.SelectedEducation, 0, len(resume.Education)),
		Projects:       make([]types.SelectedProject, 0, len(resume.Projects)),
		CustomSections: make([]types.SelectedCustomSection, 0, len(resume.CustomSections)),
	}

	for _, exp := range resume.Experiences {
		out.Experiences = append(out.Experiences, types.SelectedExperience{
			ID:              exp.ID,
			Company:         exp.Company,
			Role:            exp.Role,
			StartDate:       exp.StartDate,
			EndDate:         exp.EndDate,
			SelectedBullets: s.Select(ctx, exp.Bullets, job, limits.Experience, jobVec),
		})
	}
	for _, edu := range resume.Education {
		out.Education = append(out.Education, types.SelectedEducation{
			ID:              edu.ID,
			School:          edu.School,
			Degree:          edu.Degree,
			Field:           edu.Field,
			StartDate:       edu.StartDate,
			EndDate:         edu.EndDate,
			SelectedBullets: s.Select(ctx, edu.Bullets, job, limits.Education, jobVec),
		})
	}
	for _, proj := range resume.Projects {
		out.Projects = append(out.Projects, types.SelectedProject{
			ID:              proj.ID,
			Name:            proj.Name,
			Description:     proj.Description,
			Technologies:    proj.Technologies,
			StartDate:       proj.StartDate,
			EndDate:         proj.EndDate,
			SelectedBullets: s.Select(ctx, proj.Bullets, job, limits.Project, jobVec),
		})
	}
	for _, sec := range resume.CustomSections {
		out.CustomSections = append(out.CustomSections, types.SelectedCustomSection{
			ID:              sec.ID,
			Title:           sec.Title,
			Subtitle:        sec.Subtitle,
			SelectedBullets: s.Select(ctx, sec.Bullets, job, limits.Custom, jobVec),
		})
	}

	s.logger.Debug("selection complete",
		zap.Int("experiences", len(out.Experiences)),
		zap.Int("education", len(out.Education)),
		zap.Int("projects", len(out.Projects)),
		zap.Int("custom_sections", len(out.CustomSections)),
		zap.Bool("semantic", jobVec != nil))
	return out
}

// WordOverlap is the Jaccard similarity of the lower-cased whitespace tokens
// of a and b.
func WordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)

	union := len(wb)
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
