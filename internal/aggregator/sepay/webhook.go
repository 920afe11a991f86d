package sepay

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// WebhookPayload is the push notification SePay delivers on an inbound
// transfer. Every field is optional: the sender is untrusted and formats
// drift, so recognition is lenient.
type WebhookPayload struct {
	TransactionID string     `json:"transaction_id"`
	OrderCode     string     `json:"order_code"`
	Amount        FlexAmount `json:"amount"`
	AccountNumber string     `json:"account_number"`
	Description   string     `json:"description"`
	TransferTime  string     `json:"transfer_time"`
}

// ParseWebhook decodes a raw webhook body. Unknown fields are ignored; only
// malformed JSON is an error.
func ParseWebhook(body []byte) (WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return WebhookPayload{}, fmt.Errorf("unrecognized webhook shape: %w", err)
	}
	return p, nil
}

// FlexAmount coerces an amount delivered as either a JSON number or a
// numeric string. Some aggregator environments serialize numbers as strings.
type FlexAmount int64

func (a *FlexAmount) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch n := v.(type) {
	case nil:
		*a = 0
	case float64:
		*a = FlexAmount(n)
	case string:
		if n == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return fmt.Errorf("amount %q is not numeric", n)
		}
		*a = FlexAmount(f)
	default:
		return fmt.Errorf("amount has unsupported type %T", v)
	}
	return nil
}
