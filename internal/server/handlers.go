package server

import (
	"net/http"

	"github.com/jonathan/resume-rag/internal/pipeline"
	"github.com/jonathan/resume-rag/internal/types"
	"go.uber.org/zap"
)

// handleOptimizeFlat retrieves and rewrites indexed points for a job description.
func (s *Server) handleOptimizeFlat(w http.ResponseWriter, r *http.Request) {
	var req types.RAGRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp, err := s.service.OptimizeFlat(r.Context(), req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleOptimizeFlatStream runs the flat flow and streams its progress as
// Server-Sent Events, ending with a result and a complete event.
func (s *Server) handleOptimizeFlatStream(w http.ResponseWriter, r *http.Request) {
	var req types.RAGRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	sse := NewSSEWriter(w)
	ctx := pipeline.WithProgress(r.Context(), func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			s.logger.Debug("failed to write progress event", zap.Error(err))
		}
	})

	resp, err := s.service.OptimizeFlat(ctx, req)
	if err != nil {
		sse.WriteError(err.Error())
		sse.WriteComplete("failed")
		return
	}
	if err := sse.WriteEvent("result", resp); err != nil {
		s.logger.Warn("failed to write result event", zap.Error(err))
		return
	}
	sse.WriteComplete("completed")
}

// handleSelect picks the most relevant bullets of a structured resume.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req types.SelectionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp, err := s.service.Select(r.Context(), req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleOptimize selects and rewrites the bullets of a structured resume.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizationRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}

	resp, err := s.service.Optimize(r.Context(), req)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHealth returns 200 when the vector store answers and 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.service.Health(r.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	} else {
		s.metrics.SetVectorStoreSize(health.Stats.VectorStore.TotalPoints)
	}
	s.jsonResponse(w, status, health)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.SetVectorStoreSize(stats.VectorStore.TotalPoints)
	s.jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.Results(r.Context())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"results": entries})
}

// handleAdminToken exchanges the admin password for a bearer token.
func (s *Server) handleAdminToken(w http.ResponseWriter, r *http.Request) {
	if s.tokens == nil || s.adminHash == "" {
		s.errorFromErr(w, &ErrAdminDisabled{})
		return
	}

	var req types.AdminTokenRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}
	if !s.password.VerifyPassword(req.Password, s.adminHash) {
		s.logger.Warn("admin login failed", zap.String("client", s.extractClientID(r)))
		s.errorFromErr(w, &ErrInvalidCredentials{})
		return
	}

	token, err := s.tokens.GenerateToken(adminSubject)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.tokens.Expiration().Seconds()),
	})
}

// handleIndex adds points to the vector store.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req types.IndexRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.errorFromErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, err)
		return
	}

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	added, err := s.service.Index(r.Context(), req.Points)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.SetVectorStoreSize(stats.VectorStore.TotalPoints)
	s.jsonResponse(w, http.StatusOK, map[string]int{
		"indexed":      added,
		"total_points": stats.VectorStore.TotalPoints,
	})
}

// handleClear removes every indexed point.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if err := s.service.Clear(r.Context()); err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.metrics.SetVectorStoreSize(0)
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}
