package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 256
)

// Client defines the interface for AI text processing.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

// Message is a single turn in the model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You translate free-form bookkeeping messages from poultry-trade field staff into exactly one slash command.

Supported commands:
/sale <customerId> <farmId> <chickens> <weight> <rate> [vehicle] - a sale of birds
/receipt <customerId> <amount> [accountId] - a cash receipt from a customer
/balance <customerId> - what a customer owes
/stock - remaining birds per farm
/dues - outstanding dues report
/summary - books summary

Rules:
- Output ONLY the command line, nothing else. No explanation, no markdown.
- Numbers in the message map positionally; customers, farms and accounts are referred to by their numeric ids.
- If the message cannot be expressed as one of the commands, or an id is missing, output exactly: UNKNOWN`

// TranslateToCommand asks the model to turn free text into a slash command.
// An empty string is returned when the message cannot be translated.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []Message{
			{Role: "user", Content: input},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(apiURL)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	translated := strings.TrimSpace(respBody.Content[0].Text)
	if translated == "" || strings.EqualFold(translated, "UNKNOWN") {
		return "", nil
	}
	if !strings.HasPrefix(translated, "/") {
		return "", nil
	}
	return translated, nil
}
