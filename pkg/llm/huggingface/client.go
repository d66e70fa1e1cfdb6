package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const requestTimeout = 120 * time.Second

// endpoint is one HF route plus the bearer token used to reach it.
type endpoint struct {
	apiKey string
	client *http.Client
}

func newEndpoint(apiKey string) endpoint {
	return endpoint{apiKey: apiKey, client: &http.Client{Timeout: requestTimeout}}
}

// post sends payload as JSON and returns the raw body of a 200 reply.
func (e endpoint) post(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return raw, nil
}
