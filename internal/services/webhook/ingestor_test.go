package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clinicpay/internal/aggregator/sepay"
	domain "clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"
)

type fakeStore struct {
	intents   map[string]*domain.Intent
	markCalls int
}

func newFakeStore(intents ...*domain.Intent) *fakeStore {
	f := &fakeStore{intents: map[string]*domain.Intent{}}
	for _, i := range intents {
		f.intents[i.OrderCode] = i
	}
	return f
}

func (f *fakeStore) FindByOrderCode(_ context.Context, orderCode string) (*domain.Intent, error) {
	i, ok := f.intents[orderCode]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeStore) Create(_ context.Context, i *domain.Intent) error {
	f.intents[i.OrderCode] = i
	return nil
}

func (f *fakeStore) MarkPaid(_ context.Context, orderCode, transactionID, description string) (bool, error) {
	f.markCalls++
	i, ok := f.intents[orderCode]
	if !ok {
		return false, nil
	}
	return i.MarkPaid(transactionID, description), nil
}

func (f *fakeStore) ListPending(_ context.Context, limit int) ([]*domain.Intent, error) {
	return nil, nil
}

type fakeGuard struct {
	seen     map[string]bool
	err      error
	released []string
}

func (g *fakeGuard) CheckAndMark(_ context.Context, id string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	dup := g.seen[id]
	g.seen[id] = true
	return dup, nil
}

func (g *fakeGuard) Release(_ context.Context, id string) error {
	g.released = append(g.released, id)
	delete(g.seen, id)
	return nil
}

func pendingIntent(t *testing.T, orderCode string) *domain.Intent {
	t.Helper()
	i, err := domain.NewIntent(orderCode, 50000)
	if err != nil {
		t.Fatalf("intent setup: %v", err)
	}
	return i
}

func TestProcessTransitionsOnce(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"))
	ing := NewIngestor(store, nil)

	payload := sepay.WebhookPayload{
		TransactionID: "TX1",
		Amount:        50000,
		Description:   "TT CLINIC1001",
	}

	if err := ing.Process(context.Background(), payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	i := store.intents["CLINIC1001"]
	if i.Status != domain.StatusPaid || *i.TransactionID != "TX1" || *i.Description != "TT CLINIC1001" {
		t.Fatalf("unexpected state after first delivery: %+v", i)
	}

	if err := ing.Process(context.Background(), payload); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if *i.TransactionID != "TX1" || i.Status != domain.StatusPaid {
		t.Fatal("redelivery must be a no-op")
	}
	if store.markCalls != 1 {
		t.Fatalf("expected one transition attempt, got %d", store.markCalls)
	}
}

func TestProcessDropsUnparseableDescription(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"))
	ing := NewIngestor(store, nil)

	err := ing.Process(context.Background(), sepay.WebhookPayload{
		TransactionID: "TX9",
		Description:   "no matching pattern",
	})
	if err != nil {
		t.Fatalf("drop must be silent: %v", err)
	}
	if store.intents["CLINIC1001"].Status != domain.StatusPending {
		t.Fatal("no record may be mutated")
	}
	if store.markCalls != 0 {
		t.Fatal("no transition may be attempted")
	}
}

func TestProcessDropsUnknownOrder(t *testing.T) {
	store := newFakeStore()
	ing := NewIngestor(store, nil)

	err := ing.Process(context.Background(), sepay.WebhookPayload{
		TransactionID: "TX9",
		Description:   "TT CLINIC9999",
	})
	if err != nil {
		t.Fatalf("unknown order must drop silently: %v", err)
	}
	if len(store.intents) != 0 {
		t.Fatal("no record may be created")
	}
}

func TestProcessIgnoresOrderCodeField(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"), pendingIntent(t, "CLINIC2"))
	ing := NewIngestor(store, nil)

	// The description is the source of truth, not order_code.
	err := ing.Process(context.Background(), sepay.WebhookPayload{
		TransactionID: "TX1",
		OrderCode:     "CLINIC2",
		Description:   "TT CLINIC1001",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.intents["CLINIC1001"].Status != domain.StatusPaid {
		t.Fatal("intent named by the description must settle")
	}
	if store.intents["CLINIC2"].Status != domain.StatusPending {
		t.Fatal("intent named by order_code must not settle")
	}
}

func TestProcessGeneratesFallbackTransactionID(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"))
	ing := NewIngestor(store, nil)

	if err := ing.Process(context.Background(), sepay.WebhookPayload{Description: "TT CLINIC1001"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	i := store.intents["CLINIC1001"]
	if i.TransactionID == nil || !strings.HasPrefix(*i.TransactionID, "TX_") {
		t.Fatalf("expected generated fallback token, got %+v", i.TransactionID)
	}
}

func TestProcessDedupGuard(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"))
	guard := &fakeGuard{}
	ing := NewIngestor(store, guard)

	payload := sepay.WebhookPayload{TransactionID: "TX1", Description: "TT CLINIC1001"}

	if err := ing.Process(context.Background(), payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := ing.Process(context.Background(), payload); err != nil {
		t.Fatalf("duplicate delivery: %v", err)
	}
	if store.markCalls != 1 {
		t.Fatalf("guard should short-circuit the duplicate, got %d transitions", store.markCalls)
	}
}

func TestProcessGuardFailureDegrades(t *testing.T) {
	store := newFakeStore(pendingIntent(t, "CLINIC1001"))
	guard := &fakeGuard{err: errors.New("redis down")}
	ing := NewIngestor(store, guard)

	if err := ing.Process(context.Background(), sepay.WebhookPayload{TransactionID: "TX1", Description: "TT CLINIC1001"}); err != nil {
		t.Fatalf("guard failure must not block processing: %v", err)
	}
	if store.intents["CLINIC1001"].Status != domain.StatusPaid {
		t.Fatal("payment must still settle when redis is down")
	}
}
