package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "creatorhub/configs"
	"creatorhub/internal/transfer"
)

// AIService asks the model for caption, hashtags, posting time and an
// engagement estimate for one content item. AI is never critical-path: a
// missing key, a failed call or an unparseable answer all degrade to the
// static fallback, and the caller cannot tell the difference.
type AIService interface {
	AnalyzeContent(ctx context.Context, title, description, mediaType string) *transfer.ContentAnalysis
}

type aiService struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewAIService(cfg config.Config) AIService {
	return &aiService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

const analysisSystemPrompt = "You are an assistant that analyzes adult-creator content metadata and answers with a single JSON object, no prose. Fields: caption (string), hashtags (array of strings with # prefix), bestTime (ISO 8601 timestamp), engagementScore (0-100 integer), contentWarnings (array of strings), targetAudience (array of strings), suggestedPrice (number, optional), seoOptimization (object with title and keywords)."

func (s *aiService) AnalyzeContent(ctx context.Context, title, description, mediaType string) *transfer.ContentAnalysis {
	if s.cfg.AIAPIKey == "" {
		return FallbackAnalysis()
	}

	prompt := fmt.Sprintf("Analyze this %s content for a subscription platform.\nTitle: %s\nDescription: %s", mediaType, title, description)

	reqBody := transfer.ChatRequest{
		Model: s.cfg.AIModel,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		slog.Info(err.Error())
		return FallbackAnalysis()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AIAPIBase+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		slog.Info(err.Error())
		return FallbackAnalysis()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.AIAPIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return FallbackAnalysis()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("AI endpoint returned status %d", resp.StatusCode))
		return FallbackAnalysis()
	}

	var chatResp transfer.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		slog.Info(err.Error())
		return FallbackAnalysis()
	}
	if len(chatResp.Choices) == 0 {
		slog.Info("AI response contained no choices")
		return FallbackAnalysis()
	}

	analysis, err := parseAnalysis(chatResp.Choices[0].Message.Content)
	if err != nil {
		slog.Info(err.Error())
		return FallbackAnalysis()
	}

	return analysis
}

func parseAnalysis(content string) (*transfer.ContentAnalysis, error) {
	// Models wrap JSON in code fences often enough to strip them here.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var analysis transfer.ContentAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &analysis); err != nil {
		return nil, err
	}

	fallback := FallbackAnalysis()
	if len(analysis.Hashtags) == 0 {
		analysis.Hashtags = fallback.Hashtags
	}
	if analysis.BestTime == "" {
		analysis.BestTime = fallback.BestTime
	}
	if analysis.EngagementScore <= 0 || analysis.EngagementScore > 100 {
		analysis.EngagementScore = fallback.EngagementScore
	}

	return &analysis, nil
}

// FallbackAnalysis is the documented static default used whenever the
// provider is unavailable.
func FallbackAnalysis() *transfer.ContentAnalysis {
	return &transfer.ContentAnalysis{
		Caption:         "New post is live, don't miss it",
		Hashtags:        []string{"#exclusive", "#newpost", "#creator", "#behindthescenes"},
		BestTime:        time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		EngagementScore: 85,
		ContentWarnings: []string{},
		TargetAudience:  []string{"subscribers"},
		SEOOptimization: transfer.SEOOptimization{
			Title:    "New exclusive content",
			Keywords: []string{"exclusive", "content"},
		},
	}
}
