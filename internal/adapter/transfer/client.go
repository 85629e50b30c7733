package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"multicurrency-ledger/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client moves native-asset funds between custody accounts over the
// custody provider's HTTP API. It implements ports.Transferer.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a transfer client from the custody configuration.
func NewClient(cfg config.CustodyConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type transferRequest struct {
	Amount int64  `json:"amount"`
	From   string `json:"from_account"`
	To     string `json:"to_account"`
}

type transferResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Transfer debits amount from the source custody account and credits the
// destination. A non-2xx response or transport failure is returned as an
// error with no retry; callers decide how to surface it.
func (c *Client) Transfer(ctx context.Context, amount int64, from, to uuid.UUID) error {
	payload, err := json.Marshal(transferRequest{
		Amount: amount,
		From:   from.String(),
		To:     to.String(),
	})
	if err != nil {
		return fmt.Errorf("marshaling transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).
			Str("from", from.String()).
			Str("to", to.String()).
			Int64("amount", amount).
			Msg("custody transfer request failed")
		return fmt.Errorf("custody transfer: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var tr transferResponse
		if json.Unmarshal(body, &tr) == nil && tr.Error != "" {
			return fmt.Errorf("custody transfer rejected (%d): %s", resp.StatusCode, tr.Error)
		}
		return fmt.Errorf("custody transfer rejected with status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Int64("amount", amount).
		Msg("custody transfer completed")

	return nil
}
