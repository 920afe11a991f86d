package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clinicpay/internal/http/validators"
	paymentsvc "clinicpay/internal/services/payment"
	"clinicpay/internal/services/reconcile"
	"clinicpay/internal/store/repositories"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type createReq struct {
	OrderCode string `json:"orderCode" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// CreatePayment registers a payment intent and returns its QR transfer
// payload. Idempotent on order code.
func CreatePayment(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in createReq
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		out, err := svc.Create(r.Context(), in.OrderCode, in.Amount)
		if err != nil {
			var tooSmall paymentsvc.ErrAmountBelowMinimum
			if errors.As(err, &tooSmall) {
				http.Error(w, tooSmall.Error(), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Str("order_code", in.OrderCode).Msg("create payment failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PaymentStatus returns the stored status for an order code.
func PaymentStatus(svc *paymentsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderCode := chi.URLParam(r, "orderCode")

		status, err := svc.Status(r.Context(), orderCode)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				http.Error(w, "payment not found", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Str("order_code", orderCode).Msg("status lookup failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status})
	}
}

type checkResp struct {
	Success   bool   `json:"success"`
	OrderCode string `json:"orderCode"`
	IsPaid    bool   `json:"isPaid"`
	Status    string `json:"status"`
	CheckedAt string `json:"checkedAt"`
}

// CheckPayment runs the polling fallback for one order code. It always
// answers with a payment state; aggregator trouble degrades to the stored
// status.
func CheckPayment(poller *reconcile.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderCode := chi.URLParam(r, "orderCode")

		res := poller.Check(r.Context(), orderCode)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(checkResp{
			Success:   true,
			OrderCode: orderCode,
			IsPaid:    res.IsPaid,
			Status:    string(res.Status),
			CheckedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
