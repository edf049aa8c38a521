package initiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mzalewsk/paynow_gateway-go/internal/domain/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/payment"
	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
)

var (
	ErrUnsupportedCurrency = errors.New("currency not supported by gateway")
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrCheckoutNotFound    = errors.New("checkout for payment not found")
)

// PaymentInfo describes one payment attempt for a checkout. Token is the
// per-attempt idempotency key; PreviousPaymentID is set on re-initiation so
// the continuation URL of the earlier attempt can be reused.
type PaymentInfo struct {
	CheckoutToken     string
	Amount            decimal.Decimal
	Currency          string
	CustomerEmail     string
	PaymentMethodID   string
	Token             string
	PreviousPaymentID string
}

type Result struct {
	Success        bool
	PaymentID      string
	TransactionID  string
	RedirectURL    string
	ActionRequired bool
}

type ProcessorClient interface {
	CreatePayment(ctx context.Context, req paynow.CreatePaymentRequest, idempotencyKey string) (paynow.CreatePaymentResponse, error)
	PaymentMethods(ctx context.Context) ([]paynow.PaymentMethodGroup, error)
}

type Service struct {
	Config    paynow.Config
	Client    ProcessorClient
	Payments  payment.Repository
	Checkouts checkout.Repository
	Logger    logging.Logger
	Metrics   *metrics.Counters
}

// MinorUnits converts a major-unit amount to minor units, truncating toward
// zero. Negative amounts are rejected.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	return amount.Mul(decimal.NewFromInt(100)).Truncate(0).IntPart(), nil
}

// Initiate creates a processor-side payment for a checkout. On success a new
// active PaymentRecord supersedes any earlier attempt for the same checkout.
// On a non-2xx processor response nothing is recorded and the caller decides
// whether to retry.
func (s *Service) Initiate(ctx context.Context, info PaymentInfo) (Result, error) {
	if !s.Config.Supports(info.Currency) {
		return Result{}, ErrUnsupportedCurrency
	}

	minor, err := MinorUnits(info.Amount)
	if err != nil {
		return Result{}, err
	}

	chk, err := s.Checkouts.FindByID(info.CheckoutToken)
	if errors.Is(err, checkout.ErrNotFound) {
		return Result{}, ErrCheckoutNotFound
	}
	if err != nil {
		return Result{}, err
	}

	token := info.Token
	if token == "" {
		token = uuid.NewString()
	}

	req := paynow.CreatePaymentRequest{
		Amount:          minor,
		Currency:        info.Currency,
		ExternalID:      info.CheckoutToken,
		Description:     fmt.Sprintf("Order %s", info.CheckoutToken),
		Buyer:           paynow.Buyer{Email: info.CustomerEmail},
		PaymentMethodID: info.PaymentMethodID,
	}

	// continuation URL is best effort; a failed lookup never fails initiation
	if info.PreviousPaymentID != "" {
		if prev, err := s.Payments.FindByID(info.PreviousPaymentID); err == nil && prev.ReturnURL != "" {
			req.ContinueURL = prev.ReturnURL
		}
	}

	resp, err := s.Client.CreatePayment(ctx, req, token)
	if err != nil {
		return Result{}, err
	}

	if !resp.OK {
		s.Metrics.IncInitiationsFailed()
		s.Logger.Error("failed to create processor payment", map[string]any{
			"checkout-token": info.CheckoutToken,
			"status-code":    resp.StatusCode,
		})
		return Result{Success: false, ActionRequired: true}, nil
	}

	if err := s.Payments.DeactivateForCheckout(info.CheckoutToken); err != nil {
		return Result{}, err
	}

	pay := &payment.Payment{
		ID:          uuid.NewString(),
		ProcessorID: resp.PaymentID,
		CheckoutID:  info.CheckoutToken,
		Amount:      minor,
		Currency:    info.Currency,
		Active:      true,
		ReturnURL:   req.ContinueURL,
	}
	pay.Append(payment.Transaction{
		ID:        uuid.NewString(),
		Kind:      payment.KindActionToConfirm,
		Token:     token,
		Amount:    minor,
		Currency:  info.Currency,
		Success:   true,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.Payments.Save(pay); err != nil {
		return Result{}, err
	}

	chk.PaymentID = pay.ID
	if err := s.Checkouts.Save(chk); err != nil {
		return Result{}, err
	}

	return Result{
		Success:        true,
		PaymentID:      pay.ID,
		TransactionID:  resp.PaymentID,
		RedirectURL:    resp.RedirectURL,
		ActionRequired: true,
	}, nil
}

// PaymentMethods lists the processor's methods, filtered to the ones a buyer
// can actually use.
func (s *Service) PaymentMethods(ctx context.Context) ([]paynow.PaymentMethod, error) {
	groups, err := s.Client.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}

	var enabled []paynow.PaymentMethod
	for _, group := range groups {
		for _, method := range group.PaymentMethods {
			if method.Status == "ENABLED" {
				enabled = append(enabled, method)
			}
		}
	}
	return enabled, nil
}
