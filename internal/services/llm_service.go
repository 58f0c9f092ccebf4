// internal/services/llm_service.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/Corphon/ReelBoard/internal/llm"
	"github.com/Corphon/ReelBoard/internal/utils"
)

// LLMService wraps a Provider with timeout, logging and metrics.
// No caching and no retry: every call reaches the provider exactly once.
type LLMService struct {
	provider     llm.Provider
	providerName string
	model        string
	timeout      time.Duration
	metrics      *utils.APIMetrics
}

// LLMOption configures an LLMService
type LLMOption func(*LLMService)

// WithModel overrides the provider's default model
func WithModel(model string) LLMOption {
	return func(s *LLMService) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout bounds each call. Zero means the request context alone decides.
func WithTimeout(d time.Duration) LLMOption {
	return func(s *LLMService) { s.timeout = d }
}

// WithMetrics records call latency and token usage
func WithMetrics(m *utils.APIMetrics) LLMOption {
	return func(s *LLMService) { s.metrics = m }
}

// NewLLMService 创建LLM服务
func NewLLMService(provider llm.Provider, providerName string, opts ...LLMOption) *LLMService {
	s := &LLMService{
		provider:     provider,
		providerName: providerName,
		model:        provider.DefaultModel(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LLMService) GetProviderName() string {
	return s.providerName
}

func (s *LLMService) GetDefaultModel() string {
	return s.model
}

// Complete sends prompt and returns the reply text
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt: prompt,
		Model:  s.model,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.RecordLLMRequest(s.providerName, s.model, "error", 0, elapsed)
		utils.GetLogger().Error("LLM call failed", map[string]interface{}{
			"provider": s.providerName,
			"model":    s.model,
			"elapsed":  elapsed.String(),
			"error":    err.Error(),
		})
		return "", err
	}

	s.metrics.RecordLLMRequest(s.providerName, s.model, "ok", resp.TokensUsed, elapsed)
	utils.GetLogger().Debug("LLM call completed", map[string]interface{}{
		"provider": s.providerName,
		"model":    s.model,
		"elapsed":  elapsed.String(),
		"tokens":   resp.TokensUsed,
	})
	return resp.Text, nil
}

// StripCodeFences removes every ```json and ``` marker and trims the result.
// Nothing else is repaired; the caller parses the remainder strictly.
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json\n", "")
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```\n", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
