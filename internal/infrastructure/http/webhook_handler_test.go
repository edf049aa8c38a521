package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
	httpapi "github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/http"
)

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Warn(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

type fakeProcessor struct {
	processFn func(ctx context.Context, n paynow.Notification) error
	calls     []paynow.Notification
}

func (f *fakeProcessor) Process(ctx context.Context, n paynow.Notification) error {
	f.calls = append(f.calls, n)
	if f.processFn != nil {
		return f.processFn(ctx, n)
	}
	return nil
}

const signatureKey = "signature-key"

func newWebhookHandler(processor *fakeProcessor) (*httpapi.WebhookHandler, *metrics.Counters) {
	counters := &metrics.Counters{}
	return &httpapi.WebhookHandler{
		SignatureKey: []byte(signatureKey),
		Processor:    processor,
		Logger:       &noopLogger{},
		Metrics:      counters,
	}, counters
}

func signedRequest(body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/paynow/notification", bytes.NewReader(body))
	req.Header.Set("Signature", paynow.ComputeSignature([]byte(signatureKey), body))
	return req
}

func validBody() []byte {
	return []byte(`{"paymentId":"p1","externalId":"chk-1","status":"CONFIRMED","modifiedAt":"2024-01-01T10:00:00"}`)
}

func TestHandleNotification_Valid(t *testing.T) {
	processor := &fakeProcessor{}
	h, counters := newWebhookHandler(processor)

	rec := httptest.NewRecorder()
	h.HandleNotification(rec, signedRequest(validBody()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.calls, 1)
	require.Equal(t, "p1", processor.calls[0].PaymentID)
	require.Equal(t, paynow.StatusConfirmed, processor.calls[0].Status)
	require.Equal(t, uint64(1), counters.NotificationsAccepted)
}

func TestHandleNotification_InvalidSignature(t *testing.T) {
	processor := &fakeProcessor{}
	h, counters := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/paynow/notification", bytes.NewReader(validBody()))
	req.Header.Set("Signature", "bm90LXRoZS1zaWduYXR1cmU=")

	rec := httptest.NewRecorder()
	h.HandleNotification(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, processor.calls, "processor must not see unverified bodies")
	require.Equal(t, uint64(1), counters.NotificationsRejected)
}

func TestHandleNotification_MissingSignature(t *testing.T) {
	processor := &fakeProcessor{}
	h, _ := newWebhookHandler(processor)

	req := httptest.NewRequest(http.MethodPost, "/paynow/notification", bytes.NewReader(validBody()))

	rec := httptest.NewRecorder()
	h.HandleNotification(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, processor.calls)
}

func TestHandleNotification_TamperedBody(t *testing.T) {
	processor := &fakeProcessor{}
	h, _ := newWebhookHandler(processor)

	tampered := bytes.Replace(validBody(), []byte(`"p1"`), []byte(`"p2"`), 1)
	req := httptest.NewRequest(http.MethodPost, "/paynow/notification", bytes.NewReader(tampered))
	req.Header.Set("Signature", paynow.ComputeSignature([]byte(signatureKey), validBody()))

	rec := httptest.NewRecorder()
	h.HandleNotification(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, processor.calls)
}

func TestHandleNotification_MalformedBody(t *testing.T) {
	processor := &fakeProcessor{}
	h, counters := newWebhookHandler(processor)

	// signature is valid but the payload does not parse; the sender should
	// retry in case this side is at fault
	rec := httptest.NewRecorder()
	h.HandleNotification(rec, signedRequest([]byte(`{"paymentId":"p1"}`)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, processor.calls)
	require.Equal(t, uint64(1), counters.NotificationsRejected)
}

func TestHandleNotification_UnknownStatus(t *testing.T) {
	processor := &fakeProcessor{}
	h, _ := newWebhookHandler(processor)

	body := []byte(`{"paymentId":"p1","externalId":"chk-1","status":"SOMETHING_NEW","modifiedAt":"2024-01-01T10:00:00"}`)
	rec := httptest.NewRecorder()
	h.HandleNotification(rec, signedRequest(body))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, processor.calls)
}

func TestHandleNotification_ProcessorFailure(t *testing.T) {
	processor := &fakeProcessor{
		processFn: func(context.Context, paynow.Notification) error {
			return errors.New("store unavailable")
		},
	}
	h, counters := newWebhookHandler(processor)

	rec := httptest.NewRecorder()
	h.HandleNotification(rec, signedRequest(validBody()))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, uint64(0), counters.NotificationsAccepted)
}

func TestRouter_NotificationRoute(t *testing.T) {
	processor := &fakeProcessor{}
	h, _ := newWebhookHandler(processor)

	router := httpapi.NewRouter(h, &httpapi.CheckoutHandler{})
	srv := httptest.NewServer(router)
	defer srv.Close()

	body := validBody()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/paynow/notification", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Signature", paynow.ComputeSignature([]byte(signatureKey), body))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, processor.calls, 1)
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _ := newWebhookHandler(&fakeProcessor{})

	router := httpapi.NewRouter(h, &httpapi.CheckoutHandler{})
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/paynow/unknown")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
