package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mediseen/teleconsult-api/config"
	"github.com/mediseen/teleconsult-api/pkg/circuitbreaker"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

// Suggestion is the triage verdict for a symptom description. It is advisory
// only: the booking flow never consults it and never blocks on it.
type Suggestion struct {
	Specializations []string `json:"specializations"`
	Urgency         string   `json:"urgency"`
	Advice          string   `json:"advice"`
}

type Client interface {
	Suggest(ctx context.Context, symptoms string) (*Suggestion, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(cfg config.TriageConfig, log *logger.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "triage",
			MaxFailures: 3,
			Cooldown:    30 * time.Second,
		}),
		logger: log,
	}
}

type suggestRequest struct {
	Model    string `json:"model"`
	Symptoms string `json:"symptoms"`
}

func (c *httpClient) Suggest(ctx context.Context, symptoms string) (*Suggestion, error) {
	if symptoms == "" {
		return nil, apperrors.BadRequest("symptom description is required", nil)
	}

	body, err := json.Marshal(suggestRequest{Model: c.model, Symptoms: symptoms})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal triage request: %w", err)
	}

	var suggestion Suggestion
	err = c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/triage", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build triage request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("triage request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("triage service returned %d: %s", resp.StatusCode, payload)
		}

		if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
			return fmt.Errorf("failed to decode triage response: %w", err)
		}
		return nil
	})
	if err != nil {
		if err == circuitbreaker.ErrOpen {
			return nil, apperrors.Unavailable("triage service unavailable", err)
		}
		c.logger.Error(err, "triage suggestion failed")
		return nil, apperrors.Unavailable("triage service unavailable", err)
	}

	return &suggestion, nil
}
