package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mzalewsk/paynow_gateway-go/internal/application/initiation"
)

type CheckoutHandler struct {
	Service *initiation.Service
}

type InitiatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Email           string          `json:"email"`
	PaymentMethodID string          `json:"paymentMethodId"`
	PreviousPayment string          `json:"previousPaymentId,omitempty"`
}

type InitiatePaymentResponse struct {
	Success        bool   `json:"success"`
	PaymentID      string `json:"paymentId,omitempty"`
	TransactionID  string `json:"transactionId,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
	ActionRequired bool   `json:"actionRequired"`
}

func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.Initiate(r.Context(), initiation.PaymentInfo{
		CheckoutToken:     token,
		Amount:            req.Amount,
		Currency:          req.Currency,
		CustomerEmail:     req.Email,
		PaymentMethodID:   req.PaymentMethodID,
		PreviousPaymentID: req.PreviousPayment,
	})
	switch {
	case errors.Is(err, initiation.ErrUnsupportedCurrency),
		errors.Is(err, initiation.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, initiation.ErrCheckoutNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(InitiatePaymentResponse{
		Success:        result.Success,
		PaymentID:      result.PaymentID,
		TransactionID:  result.TransactionID,
		RedirectURL:    result.RedirectURL,
		ActionRequired: result.ActionRequired,
	})
}

func (h *CheckoutHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Service.PaymentMethods(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(methods)
}
