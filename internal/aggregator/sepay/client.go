package sepay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"clinicpay/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Client talks to the SePay user API. Polling is best-effort: callers treat
// any error here as "not yet confirmed", never as a hard failure.
type Client struct {
	http          *http.Client
	baseURL       string
	apiKey        string
	accountNumber string
	listLimit     int
}

func New(cfg config.SepayCfg) *Client {
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = 50
	}
	return &Client{
		http:          &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		accountNumber: cfg.AccountNumber,
		listLimit:     limit,
	}
}

// Configured reports whether an API key is available for polling.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Transaction is one entry from the aggregator's transaction list. Field
// names vary across SePay API versions, hence the accessor methods.
type Transaction struct {
	ID                 string `json:"id"`
	TransactionID      string `json:"transaction_id"`
	TransactionContent string `json:"transaction_content"`
	Content            string `json:"content"`
	Description        string `json:"description"`
	TransferTime       string `json:"transaction_date"`
}

// Reference returns the external transaction id, whichever field carries it.
func (t Transaction) Reference() string {
	if t.ID != "" {
		return t.ID
	}
	return t.TransactionID
}

// Narrative returns the free-text transfer content, whichever field carries it.
func (t Transaction) Narrative() string {
	if t.TransactionContent != "" {
		return t.TransactionContent
	}
	if t.Content != "" {
		return t.Content
	}
	return t.Description
}

type listResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// ListTransactions fetches the most recent inbound transfers for the
// configured account. Transient failures (network, 5xx) are retried with
// exponential backoff inside the caller's context; 4xx responses are not.
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	q := url.Values{}
	q.Set("account_number", c.accountNumber)
	q.Set("limit", strconv.Itoa(c.listLimit))
	endpoint := c.baseURL + "/transactions/list?" + q.Encode()

	var out listResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return fmt.Errorf("sepay list failed: %s", res.Status)
		}
		if res.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("sepay list failed: %s", res.Status))
		}
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("sepay list decode: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		log.Warn().Err(err).Msg("sepay transaction list unavailable")
		return nil, err
	}
	return out.Transactions, nil
}
