package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/domain"
	"github.com/community-brain/braintrust/internal/metrics"
)

const answerSystemPrompt = `You are a helpful assistant answering questions using community discussion threads.
Answer the question using only the provided context. Cite sources by their bracketed
number, for example [1]. If the context does not contain enough information to answer,
say so plainly instead of guessing.`

const summarySystemPrompt = `You summarize community discussion threads. Respond with a JSON object with
these fields: "summary" (a short paragraph), "key_points" (array of strings),
"consensus" (string or null if the thread reached no consensus) and
"open_questions" (array of strings, or null if none). Respond with JSON only.`

// Generator produces answers and summaries via chat completions.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// AnswerQuestion implements domain.Generator. Context documents are numbered in
// the order given so the model can cite them as [n].
func (g *Generator) AnswerQuestion(ctx context.Context, question string, docs []domain.ContextDoc) (domain.Generation, error) {
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, doc.Title, doc.Content)
	}
	userPrompt := fmt.Sprintf("Context:\n%s\nQuestion: %s", sb.String(), question)

	content, err := g.complete(ctx, "answer", answerSystemPrompt, userPrompt)
	if err != nil {
		return domain.Generation{}, err
	}

	return domain.Generation{
		Answer:      content,
		Model:       g.model,
		Temperature: g.temperature,
	}, nil
}

// Summarize implements domain.Generator. A malformed JSON response degrades to
// a plain summary rather than failing the request.
func (g *Generator) Summarize(ctx context.Context, transcript string) (domain.ThreadSummary, error) {
	content, err := g.complete(ctx, "summarize", summarySystemPrompt, transcript)
	if err != nil {
		return domain.ThreadSummary{}, err
	}
	return parseSummary(content, g.logger), nil
}

func (g *Generator) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, operation, "error").Inc()
		return "", parseAPIError(err, domain.ErrGenerationProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, operation, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, operation, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model, operation).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// parseSummary decodes the model's JSON summary. Models occasionally wrap the
// object in a markdown fence or emit prose, so strip fences first and fall
// back to treating the whole response as the summary text.
func parseSummary(content string, logger *zap.Logger) domain.ThreadSummary {
	raw := strings.TrimSpace(content)
	trimmed := strings.TrimPrefix(raw, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	var parsed struct {
		Summary       string   `json:"summary"`
		KeyPoints     []string `json:"key_points"`
		Consensus     *string  `json:"consensus"`
		OpenQuestions []string `json:"open_questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &parsed); err != nil || parsed.Summary == "" {
		if logger != nil {
			logger.Warn("summary response was not valid JSON, using raw text")
		}
		return domain.ThreadSummary{
			Summary:   raw,
			KeyPoints: []string{},
		}
	}

	if parsed.KeyPoints == nil {
		parsed.KeyPoints = []string{}
	}

	return domain.ThreadSummary{
		Summary:       parsed.Summary,
		KeyPoints:     parsed.KeyPoints,
		Consensus:     parsed.Consensus,
		OpenQuestions: parsed.OpenQuestions,
	}
}
