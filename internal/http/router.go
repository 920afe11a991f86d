package httpx

import (
	"encoding/json"
	"net/http"

	"clinicpay/internal/http/handlers"
	paymentsvc "clinicpay/internal/services/payment"
	"clinicpay/internal/services/reconcile"
	"clinicpay/internal/services/webhook"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies holds all dependencies for the HTTP router.
type RouterDependencies struct {
	PaymentService *paymentsvc.Service
	Ingestor       *webhook.Ingestor
	Poller         *reconcile.Poller
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	r.Route("/payments/sepay", func(r chi.Router) {
		r.Post("/create", handlers.CreatePayment(deps.PaymentService))
		r.Get("/status/{orderCode}", handlers.PaymentStatus(deps.PaymentService))
		r.Get("/check/{orderCode}", handlers.CheckPayment(deps.Poller))

		// Public: the aggregator pushes here. Validation happens inside; the
		// endpoint always acks.
		r.Post("/webhook", handlers.SepayWebhook(deps.Ingestor))
	})

	return r
}
