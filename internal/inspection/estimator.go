package inspection

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Estimator asks the LLM for a rough device count from a free-text building
// description.
type Estimator interface {
	EstimateDevices(ctx context.Context, description string) (int, error)
}

type llmEstimator struct {
	client *resty.Client
	model  string
}

// NewEstimator builds an Estimator against an OpenAI-compatible chat API.
// Returns nil when no API key is configured; callers must handle that.
func NewEstimator(baseURL, apiKey, model string) Estimator {
	if apiKey == "" {
		return nil
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &llmEstimator{client: client, model: model}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (e *llmEstimator) EstimateDevices(ctx context.Context, description string) (int, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"model": e.model,
			"messages": []map[string]string{
				{"role": "system", "content": "You estimate fire alarm device counts. Reply with a single integer and nothing else."},
				{"role": "user", "content": "Estimate the total number of fire alarm devices (detectors, pull stations, horn/strobes) for this building: " + description},
			},
			"temperature": 0,
		}).
		Post("/chat/completions")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("llm returned %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, err
	}
	if len(parsed.Choices) == 0 {
		return 0, fmt.Errorf("llm returned no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	// Tolerate answers like "approximately 42 devices".
	for _, field := range strings.Fields(content) {
		n, err := strconv.Atoi(strings.Trim(field, ".,"))
		if err == nil && n >= 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("llm answer not a number: %q", content)
}
