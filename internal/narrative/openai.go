package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/seenimoa/edgarwatch/internal/logger"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultMaxChars = 4000

	defaultRiskScore  = 50
	defaultConfidence = 0.8
	temperature       = 0.3

	// maxQuotedReply bounds how much of an undecodable reply is quoted in errors.
	maxQuotedReply = 120
)

const systemPrompt = "You are a financial analyst reviewing SEC filings. Respond only with a JSON object."

const promptTemplate = `Analyze this SEC filing excerpt and provide:
1. A brief summary (2-3 sentences)
2. Key takeaways (3-5 bullet points)
3. Overall sentiment (positive/neutral/negative)
4. Risk score (0-100)

Respond with a JSON object with the keys "summary" (string), "keyTakeaways" (array of strings),
"sentiment" (string) and "riskScore" (integer).

Filing excerpt:
%s

Changes detected:
%s`

// OpenAI generates narratives with the OpenAI chat completions API.
type OpenAI struct {
	client   *openai.Client
	model    string
	maxChars int
}

// NewOpenAI creates an OpenAI narrator. An API key is required.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", ErrNarrative)
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
		slog.Warn("narrative model not set, defaulting", "model", DefaultModel)
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	slog.Info("initializing OpenAI narrator", "model", opts.Model)
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		model:    opts.Model,
		maxChars: opts.MaxChars,
	}, nil
}

type analysisResponse struct {
	Summary      string   `json:"summary"`
	KeyTakeaways []string `json:"keyTakeaways"`
	Sentiment    string   `json:"sentiment"`
	RiskScore    *float64 `json:"riskScore"`
}

// Generate implements Narrator.
func (o *OpenAI) Generate(ctx context.Context, text string, report models.ChangeReport) (*models.Narrative, error) {
	changes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode change report: %w", ErrNarrative, err)
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, truncateRunes(text, o.maxChars), changes)},
		},
		Temperature:    temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	slog.DebugContext(ctx, "requesting narrative", "model", o.model)
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: OpenAI API call failed: %w", ErrNarrative, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: OpenAI returned no choices", ErrNarrative)
	}

	content := resp.Choices[0].Message.Content
	var out analysisResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: decode analysis %q: %w", ErrNarrative, logger.Truncate(content, maxQuotedReply), err)
	}
	return o.narrative(out), nil
}

func (o *OpenAI) narrative(out analysisResponse) *models.Narrative {
	label := strings.ToLower(strings.TrimSpace(out.Sentiment))
	if label == "" {
		label = "neutral"
	}
	risk := defaultRiskScore
	if out.RiskScore != nil {
		risk = int(math.Round(math.Max(0, math.Min(100, *out.RiskScore))))
	}
	return &models.Narrative{
		Summary:      out.Summary,
		KeyTakeaways: out.KeyTakeaways,
		Sentiment: models.Sentiment{
			Overall:    label,
			Score:      sentimentScore(label),
			Confidence: defaultConfidence,
		},
		RiskScore: models.RiskScore{Overall: risk, Category: riskCategory(risk)},
		Model:     o.model,
	}
}
