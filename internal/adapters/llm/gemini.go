package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// GeminiClient implements domain.LLMClient against the Gemini API.
// Chat and report generation use separate model ids.
type GeminiClient struct {
	client      *genai.Client
	chatModel   string
	reportModel string
}

// NewGeminiClient creates the client. An empty apiKey is not an error:
// it yields a not-ready client whose calls fail before any network
// round trip, so the rest of the app can refuse dependent operations.
func NewGeminiClient(ctx context.Context, apiKey, chatModel, reportModel string) (*GeminiClient, error) {
	c := &GeminiClient{
		chatModel:   chatModel,
		reportModel: reportModel,
	}
	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiClient) Ready() bool {
	return c.client != nil
}

func (c *GeminiClient) Chat(
	ctx context.Context,
	history []domain.Message,
	profile domain.UserProfile,
	condition string,
) (string, error) {
	text, err := c.generate(ctx, c.chatModel, BuildChatPrompt(history, profile, condition))
	if err != nil {
		return "", fmt.Errorf("ai response error: %w", err)
	}
	return text, nil
}

func (c *GeminiClient) Report(
	ctx context.Context,
	history []domain.Message,
	profile domain.UserProfile,
	condition string,
) (string, error) {
	text, err := c.generate(ctx, c.reportModel, BuildReportPrompt(history, profile, condition))
	if err != nil {
		return "", fmt.Errorf("report generation error: %w", err)
	}
	return text, nil
}

func (c *GeminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("gemini client not initialized: missing API key")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(8192)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: outputTokens,
	}

	res, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
