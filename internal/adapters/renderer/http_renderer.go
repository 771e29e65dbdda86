// Package renderer provides the client for the coaching copy service, which
// turns a rationale code and its parameters into user-facing text. The
// engine falls back to its built-in templates when this client errors.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
)

const defaultTimeout = 3 * time.Second

type HTTPRenderer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRenderer(baseURL string, timeout time.Duration) *HTTPRenderer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type renderRequest struct {
	Code   string                 `json:"code"`
	Params domain.RationaleParams `json:"params"`
}

type renderResponse struct {
	Text string `json:"text"`
}

func (r *HTTPRenderer) Render(ctx context.Context, code string, params domain.RationaleParams) (string, error) {
	payload, err := json.Marshal(renderRequest{Code: code, Params: params})
	if err != nil {
		return "", fmt.Errorf("renderer: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("renderer: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("renderer: service returned %d: %s", resp.StatusCode, body)
	}

	var decoded renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("renderer: failed to decode response: %w", err)
	}
	if decoded.Text == "" {
		return "", fmt.Errorf("renderer: service returned empty text for code %q", code)
	}

	return decoded.Text, nil
}
