package reconcile

import (
	"context"

	"clinicpay/internal/aggregator/sepay"
	"clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// Result is what callers of the polling fallback get back. It is always a
// payment state, never an error: polling failures degrade to "not yet
// confirmed".
type Result struct {
	IsPaid bool
	Status payment.Status
}

// Poller reconciles an intent against the aggregator's transaction list when
// a webhook is delayed, dropped, or never fires.
type Poller struct {
	store  repositories.IntentStore
	client *sepay.Client
}

func NewPoller(store repositories.IntentStore, client *sepay.Client) *Poller {
	return &Poller{store: store, client: client}
}

// Check resolves the payment state of one order code. An unknown order is a
// negative result, not an error. An intent that already settled short-circuits
// without an outbound call.
func (p *Poller) Check(ctx context.Context, orderCode string) Result {
	intent, err := p.store.FindByOrderCode(ctx, orderCode)
	if err == repositories.ErrNotFound {
		log.Warn().Str("order_code", orderCode).Msg("check: intent not found")
		return Result{IsPaid: false, Status: payment.StatusFailed}
	}
	if err != nil {
		log.Error().Err(err).Str("order_code", orderCode).Msg("check: intent lookup failed")
		return Result{IsPaid: false, Status: payment.StatusPending}
	}

	if intent.IsPaid() {
		return Result{IsPaid: true, Status: payment.StatusPaid}
	}

	if !p.client.Configured() {
		log.Warn().Str("order_code", orderCode).Msg("check: aggregator api key missing, returning stored status")
		return Result{IsPaid: false, Status: intent.Status}
	}

	txs, err := p.client.ListTransactions(ctx)
	if err != nil {
		// Soft-fail: the caller only learns the last persisted status.
		return Result{IsPaid: false, Status: intent.Status}
	}

	for _, tx := range txs {
		if !payment.ContainsOrderCode(tx.Narrative(), orderCode) {
			continue
		}

		transactionID := tx.Reference()
		if transactionID == "" {
			transactionID = payment.FallbackTransactionID()
		}
		applied, err := p.store.MarkPaid(ctx, orderCode, transactionID, tx.Narrative())
		if err != nil {
			log.Error().Err(err).Str("order_code", orderCode).Msg("check: mark paid failed")
			return Result{IsPaid: false, Status: intent.Status}
		}
		if applied {
			log.Info().
				Str("order_code", orderCode).
				Str("transaction_id", transactionID).
				Msg("payment confirmed via polling")
		}
		// Either we applied the transition or a concurrent webhook beat us to
		// it; the intent is settled in both cases.
		return Result{IsPaid: true, Status: payment.StatusPaid}
	}

	return Result{IsPaid: false, Status: intent.Status}
}
