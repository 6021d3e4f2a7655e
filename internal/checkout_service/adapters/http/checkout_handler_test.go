package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

type MockCheckoutProcessor struct {
	mock.Mock
}

func (m *MockCheckoutProcessor) AuthorizeAndCheckout(ctx context.Context, sessionID string, sub domain.CheckoutSubmission) domain.AttemptOutcome {
	args := m.Called(ctx, sessionID, sub)
	return args.Get(0).(domain.AttemptOutcome)
}

func (m *MockCheckoutProcessor) ResolveChallenge(ctx context.Context, sessionID string, userIP string, fields map[string]string) domain.AttemptOutcome {
	args := m.Called(ctx, sessionID, userIP, fields)
	return args.Get(0).(domain.AttemptOutcome)
}

func setupHandlerTest(t *testing.T) (*MockCheckoutProcessor, *chi.Mux) {
	t.Helper()
	service := new(MockCheckoutProcessor)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewCheckoutHandler(service, logger, validator.New())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return service, router
}

func cardPaymentBody() string {
	return `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"address1": "1 High Street",
		"town": "London",
		"postcode": "SW1A 1AA",
		"country": "GB",
		"payment_method": "card",
		"name_on_card": "A Lovelace",
		"card_number": "4929000000006",
		"expiry_month": "09",
		"expiry_year": "2030",
		"security_code": "123"
	}`
}

func TestProcessPayment_CompleteSettled(t *testing.T) {
	service, router := setupHandlerTest(t)

	service.On("AuthorizeAndCheckout", mock.Anything, "sess-1", mock.MatchedBy(func(sub domain.CheckoutSubmission) bool {
		return sub.Method == domain.PaymentMethodCard &&
			sub.Card != nil && sub.Card.CardNumber == "4929000000006" &&
			sub.Bank == nil
	})).Return(domain.CompleteOutcome(true, "WEB-REF-1")).Once()

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader(cardPaymentBody()))
	req.Header.Set(SessionIDHeader, "sess-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AttemptOutcomeResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "complete", resp.Status)
	assert.True(t, resp.Settled)
	assert.Equal(t, "WEB-REF-1", resp.Reference)
	service.AssertExpectations(t)
}

func TestProcessPayment_ChallengeRequiredIsConflict(t *testing.T) {
	service, router := setupHandlerTest(t)

	service.On("AuthorizeAndCheckout", mock.Anything, "sess-1", mock.Anything).
		Return(domain.ChallengeOutcome("<form></form>")).Once()

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader(cardPaymentBody()))
	req.Header.Set(SessionIDHeader, "sess-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	var resp AttemptOutcomeResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "challenge_required", resp.Status)
	assert.Equal(t, "<form></form>", resp.Challenge)
}

func TestProcessPayment_ErrorOutcomeIsUnprocessable(t *testing.T) {
	service, router := setupHandlerTest(t)

	service.On("AuthorizeAndCheckout", mock.Anything, "sess-1", mock.Anything).
		Return(domain.ErrorOutcome(domain.CardNotAuthorisedMessage)).Once()

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader(cardPaymentBody()))
	req.Header.Set(SessionIDHeader, "sess-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp AttemptOutcomeResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, domain.CardNotAuthorisedMessage, resp.Message)
}

func TestProcessPayment_MissingSessionHeader(t *testing.T) {
	service, router := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader(cardPaymentBody()))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "AuthorizeAndCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPayment_ValidationFailure(t *testing.T) {
	service, router := setupHandlerTest(t)

	// Card method with no card fields fails DTO validation before the service
	// is ever invoked.
	body := `{
		"first_name": "Ada",
		"last_name": "Lovelace",
		"address1": "1 High Street",
		"town": "London",
		"postcode": "SW1A 1AA",
		"country": "GB",
		"payment_method": "card"
	}`
	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader(body))
	req.Header.Set(SessionIDHeader, "sess-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "AuthorizeAndCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPayment_MalformedJSON(t *testing.T) {
	service, router := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/payment", strings.NewReader("{not json"))
	req.Header.Set(SessionIDHeader, "sess-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "AuthorizeAndCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessSecure3D_ForwardsPostbackFields(t *testing.T) {
	service, router := setupHandlerTest(t)

	service.On("ResolveChallenge", mock.Anything, "sess-3", mock.Anything, map[string]string{
		"PaRes": "blob",
		"MD":    "merchant-data",
	}).Return(domain.CompleteOutcome(true, "WEB-REF-9")).Once()

	form := url.Values{}
	form.Set("PaRes", "blob")
	form.Set("MD", "merchant-data")
	req := httptest.NewRequest(http.MethodPost, "/checkout/secure3d", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(SessionIDHeader, "sess-3")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AttemptOutcomeResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "WEB-REF-9", resp.Reference)
	service.AssertExpectations(t)
}

func TestProcessSecure3D_MissingSessionHeader(t *testing.T) {
	service, router := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/secure3d", strings.NewReader("PaRes=blob"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertNotCalled(t, "ResolveChallenge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
