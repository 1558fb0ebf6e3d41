package mediation

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog/log"
)

const (
	generationTemperature = 0.7
	generationMaxTokens   = 2000
)

// jsonModeModels is the allow-list of model identifiers known to support
// structured JSON output. Other models still work via fallback parsing.
var jsonModeModels = []string{
	"gpt-4-turbo", "gpt-4-turbo-preview", "gpt-4-0125-preview",
	"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo",
}

// ChatCompleter is the slice of the OpenAI client the gateway uses;
// *openai.Client satisfies it, and tests substitute doubles.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GenerationResult is the raw provider output plus the token counts reported
// by the provider, which downstream pricing depends on.
type GenerationResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

type Gateway struct {
	client ChatCompleter
	model  string
}

func NewGateway(client ChatCompleter, model string) *Gateway {
	return &Gateway{client: client, model: model}
}

func NewOpenAIGateway(apiKey, model string) *Gateway {
	return NewGateway(openai.NewClient(apiKey), model)
}

func (g *Gateway) Model() string {
	return g.model
}

// Generate makes exactly one provider call, bounded by ctx. Provider errors
// (timeout, auth, rate limit) are returned as-is for the caller to wrap;
// no retries happen here.
func (g *Gateway) Generate(ctx context.Context, req Request) (*GenerationResult, error) {
	apiReq := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	}

	if g.supportsJSONMode() {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("provider call failed")
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	return &GenerationResult{
		Content:      resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (g *Gateway) supportsJSONMode() bool {
	lower := strings.ToLower(g.model)
	for _, m := range jsonModeModels {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
