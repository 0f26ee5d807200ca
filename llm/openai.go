package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds the collaborator endpoint settings. BaseURL may point at
// any OpenAI-compatible provider.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIClient implements Synthesizer and Critic over an
// OpenAI-compatible chat completion API
type OpenAIClient struct {
	logger *zap.Logger
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates the collaborator client from explicit config
func NewOpenAIClient(logger *zap.Logger, config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	logger.Info("llm client initialized",
		zap.String("model", config.Model),
		zap.String("base_url", clientConfig.BaseURL))

	return &OpenAIClient{
		logger: logger,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Synthesize generates candidate source code for the problem.
func (c *OpenAIClient) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	raw, tokens, err := c.complete(ctx, buildSynthesisPrompt(req))
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("code generation failed: %w", err)
	}

	code := ExtractCode(raw)
	c.logger.Info("code generated",
		zap.String("language", req.Language),
		zap.Int("code_length", len(code)),
		zap.Int("tokens", tokens))

	return SynthesisResult{Code: code, RawText: raw, TokensUsed: tokens}, nil
}

// Critique reviews a candidate; anything except the PASS sentinel in the
// returned feedback is failing feedback.
func (c *OpenAIClient) Critique(ctx context.Context, req CritiqueRequest) (string, error) {
	feedback, _, err := c.complete(ctx, buildCritiquePrompt(req))
	if err != nil {
		return "", fmt.Errorf("code review failed: %w", err)
	}

	c.logger.Info("candidate reviewed", zap.Bool("pass", IsPass(feedback)))
	return feedback, nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, int, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", 0, err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage.TotalTokens, fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}
