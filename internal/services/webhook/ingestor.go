package webhook

import (
	"context"
	"fmt"

	"clinicpay/internal/aggregator/sepay"
	"clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// DedupGuard is an optional fast-path duplicate filter for redelivered
// webhooks. Guard failures never block processing.
type DedupGuard interface {
	CheckAndMark(ctx context.Context, transactionID string) (bool, error)
	Release(ctx context.Context, transactionID string) error
}

// Ingestor applies aggregator push notifications to payment intents. It is
// safe to invoke any number of times with the same or near-duplicate payloads.
type Ingestor struct {
	store repositories.IntentStore
	guard DedupGuard
}

func NewIngestor(store repositories.IntentStore, guard DedupGuard) *Ingestor {
	return &Ingestor{store: store, guard: guard}
}

// Process handles one webhook delivery. The guard chain is: unparseable
// description -> drop, unknown order -> drop, already settled -> no-op,
// otherwise apply the atomic PAID transition. Drops are silent: the sender
// must not be made to retry notifications that simply aren't ours.
func (ing *Ingestor) Process(ctx context.Context, p sepay.WebhookPayload) error {
	// The order_code field is not authoritative; the description narrative is
	// the source of truth.
	orderCode, ok := payment.ExtractOrderCode(p.Description)
	if !ok {
		log.Debug().Str("description", p.Description).Msg("webhook dropped: no order code in description")
		return nil
	}

	if dup := ing.alreadySeen(ctx, p.TransactionID); dup {
		log.Debug().Str("transaction_id", p.TransactionID).Msg("webhook dropped: duplicate delivery")
		return nil
	}

	intent, err := ing.store.FindByOrderCode(ctx, orderCode)
	if err == repositories.ErrNotFound {
		log.Debug().Str("order_code", orderCode).Msg("webhook dropped: unknown order")
		return nil
	}
	if err != nil {
		ing.release(ctx, p.TransactionID)
		return fmt.Errorf("lookup intent: %w", err)
	}
	if intent.IsPaid() {
		log.Info().Str("order_code", orderCode).Msg("webhook no-op: already paid")
		return nil
	}

	transactionID := p.TransactionID
	if transactionID == "" {
		transactionID = payment.FallbackTransactionID()
	}

	applied, err := ing.store.MarkPaid(ctx, orderCode, transactionID, p.Description)
	if err != nil {
		ing.release(ctx, p.TransactionID)
		return fmt.Errorf("mark paid: %w", err)
	}
	if !applied {
		// Lost the race to a concurrent delivery; same end state either way.
		log.Info().Str("order_code", orderCode).Msg("webhook no-op: settled concurrently")
		return nil
	}

	log.Info().
		Str("order_code", orderCode).
		Str("transaction_id", transactionID).
		Int64("amount", int64(p.Amount)).
		Msg("payment confirmed via webhook")
	return nil
}

func (ing *Ingestor) alreadySeen(ctx context.Context, transactionID string) bool {
	if ing.guard == nil || transactionID == "" {
		return false
	}
	dup, err := ing.guard.CheckAndMark(ctx, transactionID)
	if err != nil {
		// Redis down degrades to the store-level idempotency contract.
		log.Warn().Err(err).Msg("webhook dedup guard unavailable")
		return false
	}
	return dup
}

func (ing *Ingestor) release(ctx context.Context, transactionID string) {
	if ing.guard == nil || transactionID == "" {
		return
	}
	if err := ing.guard.Release(ctx, transactionID); err != nil {
		log.Warn().Err(err).Msg("webhook dedup guard release failed")
	}
}
