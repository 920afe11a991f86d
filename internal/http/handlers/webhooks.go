package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"clinicpay/internal/aggregator/sepay"
	"clinicpay/internal/services/webhook"

	"github.com/rs/zerolog/log"
)

// SepayWebhook consumes push notifications from the aggregator. It always
// acknowledges with 200 so the sender never enters a redelivery storm over a
// payload that is malformed or simply not ours; local failures are reported
// in the body only.
func SepayWebhook(ing *webhook.Ingestor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeAck(w, "error", "read body failed")
			return
		}

		payload, err := sepay.ParseWebhook(body)
		if err != nil {
			log.Warn().Err(err).Msg("webhook payload rejected")
			writeAck(w, "error", err.Error())
			return
		}

		if err := ing.Process(r.Context(), payload); err != nil {
			log.Error().Err(err).Msg("webhook processing failed")
			writeAck(w, "error", err.Error())
			return
		}

		writeAck(w, "ok", "")
	}
}

func writeAck(w http.ResponseWriter, message, errMsg string) {
	resp := map[string]any{"message": message}
	if errMsg != "" {
		resp["error"] = errMsg
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
