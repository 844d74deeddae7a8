package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// APIClient submits failover actions to the external transaction-submission
// service over HTTP. Idempotency on the service side is supported by sending
// a fresh UUID request ID with every attempt.
type APIClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewAPIClient creates a client for the submission service at baseURL.
// timeoutSeconds bounds each individual submission attempt; retrying across
// attempts is the caller's concern.
func NewAPIClient(baseURL, authToken string, timeoutSeconds int) *APIClient {
	return &APIClient{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

type failoverRequest struct {
	RequestID         string `json:"request_id"`
	FailingStrategyID int    `json:"failing_strategy_id"`
	BackupStrategyID  int    `json:"backup_strategy_id"`
}

// SubmitFailover posts the failover action and waits for the service's
// definitive answer. Any non-2xx status is a failure.
func (c *APIClient) SubmitFailover(ctx context.Context, failingID, backupID int) (*Confirmation, error) {
	reqBody := failoverRequest{
		RequestID:         uuid.NewString(),
		FailingStrategyID: failingID,
		BackupStrategyID:  backupID,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal failover request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/failover", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build failover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failover submission failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, fmt.Errorf("failed to read submission response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("submission service rejected failover: status %d, body: %s", resp.StatusCode, string(body))
	}

	conf := &Confirmation{}
	if err := json.Unmarshal(body, conf); err != nil {
		return nil, fmt.Errorf("failed to decode submission confirmation: %w", err)
	}
	if conf.RequestID == "" {
		conf.RequestID = reqBody.RequestID
	}
	return conf, nil
}
