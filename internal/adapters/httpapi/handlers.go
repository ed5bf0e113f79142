package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/threat-filter/internal/core"
	"github.com/mikey/threat-filter/internal/engine"
)

type classifyResponse struct {
	engine.Verdict
	Source       string    `json:"source"`
	ProcessingID string    `json:"processingId"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

type batchRequest struct {
	Messages []engine.Message `json:"messages"`
}

type batchResponse struct {
	Results []classifyResponse `json:"results"`
}

type ruleInfo struct {
	ID       string          `json:"id"`
	Category engine.Category `json:"category"`
	Weight   float64         `json:"weight"`
	Kind     string          `json:"kind"`
	Flag     string          `json:"flag,omitempty"`
}

type rulesResponse struct {
	Fingerprint string            `json:"fingerprint"`
	Thresholds  engine.Thresholds `json:"thresholds"`
	Rules       []ruleInfo        `json:"rules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(res *core.ClassificationResult) classifyResponse {
	return classifyResponse{
		Verdict:      res.Verdict,
		Source:       res.Source,
		ProcessingID: res.ProcessingID,
		AnalyzedAt:   res.AnalyzedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var msg engine.Message
	if !s.decode(w, r, &msg) {
		return
	}

	start := time.Now()
	res, err := s.ProcessEmail(r.Context(), emailFrom(msg))
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("Classification failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		s.writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}
	if len(req.Messages) > maxBatchSize {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d messages per batch", maxBatchSize))
		return
	}

	emails := make([]*core.Email, len(req.Messages))
	for i, m := range req.Messages {
		emails[i] = emailFrom(m)
	}

	start := time.Now()
	results, err := s.service.ClassifyBatch(r.Context(), emails)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("Batch classification failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	resp := batchResponse{Results: make([]classifyResponse, len(results))}
	for i, res := range results {
		s.observe(res)
		resp.Results[i] = toResponse(res)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	eng := s.service.Engine()
	rules := eng.Rules().Rules()

	resp := rulesResponse{
		Fingerprint: eng.Rules().Fingerprint(),
		Thresholds:  eng.Config().Thresholds,
		Rules:       make([]ruleInfo, len(rules)),
	}
	for i, rule := range rules {
		resp.Rules[i] = ruleInfo{
			ID:       rule.ID,
			Category: rule.Category,
			Weight:   rule.Weight,
			Kind:     string(rule.Matcher.Kind),
			Flag:     rule.Flag,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
