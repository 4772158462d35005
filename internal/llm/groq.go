package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fridge-chef/internal/shared"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// groqClient is a client for the Groq API.
type groqClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(apiKey, model string) (JSONGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &groqClient{
		apiKey: apiKey,
		model:  model,
		url:    groqAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GenerateJSON sends the prompt in JSON mode. JSON mode only yields objects,
// so array schemas are requested as {"items": [...]} and unwrapped here.
func (c *groqClient) GenerateJSON(ctx context.Context, req JSONRequest) (ContentResponse, error) {
	schema := req.Schema
	wrapped := schema != nil && schema.Type == TypeArray
	if wrapped {
		schema = &Schema{
			Type:       TypeObject,
			Properties: map[string]*Schema{"items": req.Schema},
			Required:   []string{"items"},
		}
	}

	system := req.System
	if schema != nil {
		schemaJSON, err := json.Marshal(schema)
		if err != nil {
			return ContentResponse{}, fmt.Errorf("failed to marshal schema: %w", err)
		}
		system += "\n\nRespond with a single JSON object matching this JSON schema:\n" + string(schemaJSON)
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": req.Prompt},
		},
		"temperature":     0.7,
		"response_format": map[string]string{"type": "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := shared.TokenUsage{
		PromptTokens:     groqResp.Usage.PromptTokens,
		CompletionTokens: groqResp.Usage.CompletionTokens,
		TotalTokens:      groqResp.Usage.TotalTokens,
		Model:            c.model,
	}

	if len(groqResp.Choices) == 0 || groqResp.Choices[0].Message.Content == "" {
		return ContentResponse{Usage: usage}, fmt.Errorf("no content generated")
	}

	content := groqResp.Choices[0].Message.Content
	if wrapped {
		var envelope struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal([]byte(content), &envelope); err != nil {
			return ContentResponse{Usage: usage}, fmt.Errorf("failed to unwrap items: %w", err)
		}
		if len(envelope.Items) == 0 {
			return ContentResponse{Usage: usage}, fmt.Errorf("response has no items field")
		}
		content = string(envelope.Items)
	}

	return ContentResponse{Content: content, Usage: usage}, nil
}
