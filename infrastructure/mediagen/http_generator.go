// Package mediagen provides Generator implementations: an HTTP client
// for a hosted generation provider and a local stub for offline use.
package mediagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zach-sndr/twitcanva/application/ports"
	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// HTTPGenerator submits generation requests to a provider endpoint and
// blocks until the provider responds with a result URL. Retries and
// circuit breaking happen in the generation service, not here.
type HTTPGenerator struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

type generateRequest struct {
	NodeID        string            `json:"node_id"`
	NodeType      string            `json:"node_type"`
	Prompt        string            `json:"prompt"`
	Model         string            `json:"model,omitempty"`
	Settings      map[string]string `json:"settings,omitempty"`
	ParentResults []string          `json:"parent_results,omitempty"`
}

type generateResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// NewHTTPGenerator creates a generator client for the given endpoint.
func NewHTTPGenerator(endpoint string, logger *zap.Logger) *HTTPGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGenerator{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	payload := generateRequest{
		NodeID:        req.NodeID.String(),
		NodeType:      req.NodeType.String(),
		Prompt:        req.Prompt,
		Model:         req.Model,
		Settings:      req.Settings,
		ParentResults: req.ParentResults,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode generation request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to build generation request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", pkgerrors.NewExternalError("generation provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", pkgerrors.NewExternalError("failed to read provider response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.NewExternalError(fmt.Sprintf("provider returned status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", pkgerrors.NewExternalError("provider returned malformed response").WithCause(err)
	}
	if out.Error != "" {
		return "", pkgerrors.NewExternalError(out.Error)
	}
	if out.URL == "" {
		return "", pkgerrors.NewExternalError("provider returned no result URL")
	}

	g.logger.Debug("generation completed",
		zap.String("node_id", req.NodeID.String()),
		zap.String("node_type", req.NodeType.String()),
		zap.Duration("elapsed", time.Since(start)))

	return out.URL, nil
}
