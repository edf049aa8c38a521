package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(webhook *WebhookHandler, checkout *CheckoutHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/paynow/notification", webhook.HandleNotification)
	r.Get("/paynow/methods", checkout.ListPaymentMethods)
	r.Post("/checkouts/{token}/pay", checkout.InitiatePayment)

	return r
}
