package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Mode controls whether the rewrite step may propose new bullets.
type Mode string

const (
	// ModeStrict only rewrites existing bullets.
	ModeStrict Mode = "strict"
	// ModeCreative additionally asks for new bullet suggestions that cover gaps.
	ModeCreative Mode = "creative"
)

// Defaults applied when a request leaves a field unset.
const (
	DefaultTopK                 = 5
	DefaultRewriteStyle         = "professional"
	DefaultBulletsPerExperience = 3
	DefaultBulletsPerEducation  = 2
	DefaultBulletsPerProject    = 2
	DefaultBulletsPerCustom     = 5
)

var validate = validator.New()

// RAGRequest asks for retrieval over the indexed resume points followed by one rewrite call.
type RAGRequest struct {
	JobDescription   string `json:"job_description" validate:"required"`
	TopK             int    `json:"top_k" validate:"min=1,max=20"`
	RewriteStyle     string `json:"rewrite_style"`
	OptimizationMode Mode   `json:"optimization_mode" validate:"oneof=strict creative"`
	UseHybrid        *bool  `json:"use_hybrid,omitempty"`
}

// ApplyDefaults fills unset fields with their default values.
func (r *RAGRequest) ApplyDefaults() {
	if r.TopK == 0 {
		r.TopK = DefaultTopK
	}
	if r.RewriteStyle == "" {
		r.RewriteStyle = DefaultRewriteStyle
	}
	if r.OptimizationMode == "" {
		r.OptimizationMode = ModeStrict
	}
	if r.UseHybrid == nil {
		hybrid := true
		r.UseHybrid = &hybrid
	}
}

// Hybrid reports whether hybrid search was requested. Unset means true.
func (r *RAGRequest) Hybrid() bool {
	return r.UseHybrid == nil || *r.UseHybrid
}

// Validate validates the RAGRequest using the validator.
func (r *RAGRequest) Validate() error {
	return validate.Struct(r)
}

// RewrittenPoint is one retrieved bullet with its rewrite.
type RewrittenPoint struct {
	Original        string  `json:"original"`
	Rewritten       string  `json:"rewritten"`
	SimilarityScore float64 `json:"similarity_score"`
	Reasoning       string  `json:"reasoning,omitempty"`
}

// RAGResponse is the result of the flat retrieve-and-rewrite flow.
type RAGResponse struct {
	JobDescription       string           `json:"job_description"`
	RetrievedPoints      []string         `json:"retrieved_points"`
	RewrittenPoints      []RewrittenPoint `json:"rewritten_points"`
	Gaps                 []string         `json:"gaps"`
	NewBulletSuggestions []string         `json:"new_bullet_suggestions"`
	ProcessingTime       float64          `json:"processing_time"`
	CreatedAt            time.Time        `json:"created_at"`
}

// SelectionRequest asks for per-section bullet selection over a structured resume.
type SelectionRequest struct {
	Resume               StructuredResume `json:"resume"`
	JobDescription       string           `json:"job_description" validate:"required"`
	BulletsPerExperience int              `json:"bullets_per_experience" validate:"min=1,max=10"`
	BulletsPerEducation  int              `json:"bullets_per_education" validate:"min=1,max=10"`
	BulletsPerProject    int              `json:"bullets_per_project" validate:"min=1,max=10"`
	BulletsPerCustom     int              `json:"bullets_per_custom" validate:"min=1,max=10"`
}

// ApplyDefaults fills unset per-section limits.
func (r *SelectionRequest) ApplyDefaults() {
	if r.BulletsPerExperience == 0 {
		r.BulletsPerExperience = DefaultBulletsPerExperience
	}
	if r.BulletsPerEducation == 0 {
		r.BulletsPerEducation = DefaultBulletsPerEducation
	}
	if r.BulletsPerProject == 0 {
		r.BulletsPerProject = DefaultBulletsPerProject
	}
	if r.BulletsPerCustom == 0 {
		r.BulletsPerCustom = DefaultBulletsPerCustom
	}
}

// Validate validates the SelectionRequest using the validator.
func (r *SelectionRequest) Validate() error {
	return validate.Struct(r)
}

// Limits returns the per-section limits of the request.
func (r *SelectionRequest) Limits() SectionLimits {
	return SectionLimits{
		Experience: r.BulletsPerExperience,
		Education:  r.BulletsPerEducation,
		Project:    r.BulletsPerProject,
		Custom:     r.BulletsPerCustom,
	}
}

// SectionLimits caps how many bullets are kept per section kind.
type SectionLimits struct {
	Experience int
	Education  int
	Project    int
	Custom     int
}

// DefaultSectionLimits returns the default per-section caps.
func DefaultSectionLimits() SectionLimits {
	return SectionLimits{
		Experience: DefaultBulletsPerExperience,
		Education:  DefaultBulletsPerEducation,
		Project:    DefaultBulletsPerProject,
		Custom:     DefaultBulletsPerCustom,
	}
}

// OptimizationRequest is a SelectionRequest followed by a rewrite of the selected bullets.
type OptimizationRequest struct {
	SelectionRequest
	RewriteStyle     string `json:"rewrite_style"`
	OptimizationMode Mode   `json:"optimization_mode" validate:"oneof=strict creative"`
}

// ApplyDefaults fills unset fields with their default values.
func (r *OptimizationRequest) ApplyDefaults() {
	r.SelectionRequest.ApplyDefaults()
	if r.RewriteStyle == "" {
		r.RewriteStyle = DefaultRewriteStyle
	}
	if r.OptimizationMode == "" {
		r.OptimizationMode = ModeStrict
	}
}

// Validate validates the OptimizationRequest using the validator.
func (r *OptimizationRequest) Validate() error {
	return validate.Struct(r)
}

// SelectionResponse is the result of the select flow. OptimizedResume is set
// instead of SelectedResume when Mode is "optimize".
type SelectionResponse struct {
	Mode            string          `json:"mode"`
	SelectedResume  *SelectedResume `json:"selectedResume,omitempty"`
	OptimizedResume *SelectedResume `json:"optimizedResume,omitempty"`
	TotalLineCount  int             `json:"totalLineCount"`
	MaxLines        int             `json:"maxLines"`
	FitsOnePage     bool            `json:"fitsOnePage"`
	Gaps            []string        `json:"gaps"`
	ProcessingTime  float64         `json:"processing_time"`
	CreatedAt       time.Time       `json:"created_at"`
}
