package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"clinicpay/internal/config"
	"clinicpay/internal/domain/payment"
	"clinicpay/internal/store/repositories"

	"github.com/rs/zerolog/log"
)

// ErrAmountBelowMinimum rejects create requests under the configured floor.
type ErrAmountBelowMinimum struct {
	Minimum int64
}

func (e ErrAmountBelowMinimum) Error() string {
	return fmt.Sprintf("amount must be at least %d", e.Minimum)
}

// Service creates payment intents and renders their QR transfer payload.
type Service struct {
	store repositories.IntentStore
	cfg   config.SepayCfg
	min   int64
}

func NewService(store repositories.IntentStore, cfg config.Cfg) *Service {
	return &Service{store: store, cfg: cfg.Sepay, min: cfg.Payment.MinAmount}
}

// BankInfo is the manual-transfer fallback shown next to the QR image.
type BankInfo struct {
	BankCode        string `json:"bankCode"`
	AccountNumber   string `json:"accountNumber"`
	AccountName     string `json:"accountName"`
	TransferContent string `json:"transferContent"`
}

type CreateResult struct {
	OrderCode string         `json:"orderCode"`
	Amount    int64          `json:"amount"`
	QRURL     string         `json:"qrUrl"`
	BankInfo  BankInfo       `json:"bankInfo"`
	Status    payment.Status `json:"status"`
}

// Create is idempotent on order code: an existing intent is returned with its
// current status instead of creating a duplicate. The QR URL is deterministic
// for a given order code and amount.
func (s *Service) Create(ctx context.Context, orderCode string, amount int64) (*CreateResult, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, payment.ErrEmptyOrderCode
	}
	if amount < s.min {
		return nil, ErrAmountBelowMinimum{Minimum: s.min}
	}

	result := &CreateResult{
		OrderCode: orderCode,
		Amount:    amount,
		QRURL:     s.qrURL(orderCode, amount),
		BankInfo:  s.bankInfo(orderCode),
		Status:    payment.StatusPending,
	}

	existing, err := s.store.FindByOrderCode(ctx, orderCode)
	if err == nil {
		log.Info().Str("order_code", orderCode).Str("status", string(existing.Status)).
			Msg("intent already exists, returning current state")
		result.Status = existing.Status
		return result, nil
	}
	if err != repositories.ErrNotFound {
		return nil, fmt.Errorf("lookup intent: %w", err)
	}

	intent, err := payment.NewIntent(orderCode, amount)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("persist intent: %w", err)
	}

	log.Info().Str("order_code", orderCode).Int64("amount", amount).Msg("payment intent created")
	return result, nil
}

// Status returns the current status of an intent, or
// repositories.ErrNotFound for an unknown order code.
func (s *Service) Status(ctx context.Context, orderCode string) (payment.Status, error) {
	intent, err := s.store.FindByOrderCode(ctx, orderCode)
	if err != nil {
		return "", err
	}
	return intent.Status, nil
}

// TransferContent builds the narrative the customer must include with the
// bank transfer. It round-trips through ExtractOrderCode.
func (s *Service) TransferContent(orderCode string) string {
	return s.cfg.TransferPrefix + orderCode
}

func (s *Service) qrURL(orderCode string, amount int64) string {
	return fmt.Sprintf("%s/%s-%s-compact2.jpg?amount=%d&addInfo=%s",
		s.cfg.QRImageBase, s.cfg.BankCode, s.cfg.AccountNumber,
		amount, url.QueryEscape(s.TransferContent(orderCode)))
}

func (s *Service) bankInfo(orderCode string) BankInfo {
	return BankInfo{
		BankCode:        s.cfg.BankCode,
		AccountNumber:   s.cfg.AccountNumber,
		AccountName:     s.cfg.AccountName,
		TransferContent: s.TransferContent(orderCode),
	}
}
