package handlers

import (
	"context"
	"testing"

	"clinicpay/internal/config"
	domain "clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"
)

type fakeStore struct {
	intents map[string]*domain.Intent
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
	i, ok := f.intents[orderCode]
	if !ok {
		return false, nil
	}
	return i.MarkPaid(transactionID, description), nil
}

func (f *fakeStore) ListPending(_ context.Context, limit int) ([]*domain.Intent, error) {
	return nil, nil
}

func testCfg() config.Cfg {
	return config.Cfg{
		Sepay: config.SepayCfg{
			BankCode:       "TPBANK",
			AccountNumber:  "0123456789",
			AccountName:    "CLINIC LTD",
			QRImageBase:    "https://img.vietqr.io/image",
			TransferPrefix: "TT ",
		},
		Payment: config.PaymentCfg{MinAmount: 1000},
	}
}

func pendingIntent(t *testing.T, orderCode string) *domain.Intent {
	t.Helper()
	i, err := domain.NewIntent(orderCode, 50000)
	if err != nil {
		t.Fatalf("intent setup: %v", err)
	}
	return i
}
