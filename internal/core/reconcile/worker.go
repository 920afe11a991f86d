package reconcile

import (
	"context"
	"time"

	svc "clinicpay/internal/services/reconcile"
	"clinicpay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// Worker periodically sweeps pending intents through the polling fallback so
// a dropped webhook still settles without anyone asking.
type Worker struct {
	store     repositories.IntentStore
	poller    *svc.Poller
	pollEvery time.Duration
	batch     int
}

func NewWorker(store repositories.IntentStore, poller *svc.Poller, pollEvery time.Duration, batch int) *Worker {
	if pollEvery <= 0 {
		pollEvery = 30 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	return &Worker{store: store, poller: poller, pollEvery: pollEvery, batch: batch}
}

func (w *Worker) Run(ctx context.Context) {
	log.Info().Dur("interval", w.pollEvery).Msg("reconcile worker: started")
	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reconcile worker: stopping")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	intents, err := w.store.ListPending(ctx, w.batch)
	if err != nil {
		log.Error().Err(err).Msg("reconcile worker: list pending failed")
		return
	}
	if len(intents) == 0 {
		return
	}

	settled := 0
	for _, intent := range intents {
		if ctx.Err() != nil {
			return
		}
		if res := w.poller.Check(ctx, intent.OrderCode); res.IsPaid {
			settled++
		}
	}
	if settled > 0 {
		log.Info().Int("checked", len(intents)).Int("settled", settled).Msg("reconcile worker: sweep done")
	}
}
