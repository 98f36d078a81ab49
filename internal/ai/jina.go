package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultJinaBaseURL = "https://api.jina.ai/v1"

type jinaConfig struct {
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	Dimension int    `json:"dimension"`
}

type jinaEmbedRequest struct {
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
	Task       string   `json:"task,omitempty"`
	Input      []string `json:"input"`
}

type jinaEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type jinaEmbedProvider struct {
	apiKey    string
	baseURL   string
	dimension int
}

func (p *jinaEmbedProvider) Name() string {
	return "jina"
}

func (p *jinaEmbedProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/embeddings"
	reqBody := jinaEmbedRequest{
		Model:      model,
		Dimensions: p.dimension,
		Task:       jinaTask(taskType),
		Input:      []string{text},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jina request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out jinaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("jina response has no embeddings")
	}
	return out.Data[0].Embedding, nil
}

// jinaTask maps the generic retrieval task names onto Jina's task labels.
func jinaTask(taskType string) string {
	switch strings.ToUpper(strings.TrimSpace(taskType)) {
	case "RETRIEVAL_QUERY":
		return "retrieval.query"
	case "RETRIEVAL_DOCUMENT":
		return "retrieval.passage"
	default:
		return ""
	}
}

func createJinaEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &jinaConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultJinaBaseURL
	}
	return &jinaEmbedProvider{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   baseURL,
		dimension: cfg.Dimension,
	}, nil
}

func init() {
	RegisterEmbed("jina", createJinaEmbedFactory)
}
