package transfer

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage map[string]int `json:"usage"`
}

// ContentAnalysis is the model's structured verdict on one content item.
// All fields are best-effort; callers fall back to defaults when absent.
type ContentAnalysis struct {
	Caption         string          `json:"caption"`
	Hashtags        []string        `json:"hashtags"`
	BestTime        string          `json:"bestTime"`
	EngagementScore int             `json:"engagementScore"`
	ContentWarnings []string        `json:"contentWarnings"`
	TargetAudience  []string        `json:"targetAudience"`
	SuggestedPrice  *float64        `json:"suggestedPrice,omitempty"`
	SEOOptimization SEOOptimization `json:"seoOptimization"`
}

type SEOOptimization struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}
