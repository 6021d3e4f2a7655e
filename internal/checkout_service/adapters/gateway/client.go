package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// Logical endpoint names, used for routing and metrics labels.
const (
	endpointCard     = "card"
	endpointBank     = "bank"
	endpointCheckout = "checkout"
)

// Client talks to the three remote gateway services. It is stateless and safe
// to retry at the call site; the client itself never retries. Every public
// method normalizes transport faults, non-2xx statuses, and malformed bodies
// into a domain.CallResult so no raw error crosses this boundary.
type Client struct {
	logger      *slog.Logger
	httpClient  *http.Client
	cardURL     string
	bankURL     string
	checkoutURL string
}

// NewClient builds a gateway client. timeout bounds every call end to end;
// pass a nil httpClient to get one configured with that timeout.
func NewClient(logger *slog.Logger, cardURL, bankURL, checkoutURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		logger:      logger.With("adapter", "payment_gateway"),
		httpClient:  httpClient,
		cardURL:     cardURL,
		bankURL:     bankURL,
		checkoutURL: checkoutURL,
	}
}

func (c *Client) baseURL(endpoint string) string {
	switch endpoint {
	case endpointCard:
		return c.cardURL
	case endpointBank:
		return c.bankURL
	default:
		return c.checkoutURL
	}
}

// call is the single normalization helper behind every operation: POST the
// typed request to <base>/<operation>, decode the typed response, and report
// any transport or contract failure as an error for the caller to collapse to
// GatewayError. Gateway-declared declines travel inside the decoded envelope.
func (c *Client) call(ctx context.Context, endpoint, operation string, reqBody, out any) error {
	started := time.Now()
	err := c.post(ctx, endpoint, operation, reqBody, out)
	gatewayRequestDurationHist.WithLabelValues(endpoint, operation).Observe(time.Since(started).Seconds())
	status := "ok"
	if err != nil {
		status = "transport_error"
	}
	gatewayRequestsCounter.WithLabelValues(endpoint, operation, status).Inc()
	return err
}

func (c *Client) post(ctx context.Context, endpoint, operation string, reqBody, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	url := c.baseURL(endpoint) + "/" + operation
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "gateway request", "operation", operation, "url", url, "body", string(payload))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send %s request: %w", operation, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read %s response (status %d): %w", operation, httpResp.StatusCode, err)
	}

	c.logger.DebugContext(ctx, "gateway response", "operation", operation, "status_code", httpResp.StatusCode, "body", string(respBody))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", operation, httpResp.StatusCode)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// unavailable logs the underlying fault and returns the uniform gateway-error
// result. Diagnostics stay in the log, never in the user message.
func (c *Client) unavailable(ctx context.Context, operation string, err error) domain.CallResult {
	c.logger.ErrorContext(ctx, "gateway call failed", "operation", operation, "error", err)
	return domain.Unavailable()
}

// GenerateReference calls the checkout service's reference operation. Unlike
// the payment operations it returns an error: a missing reference is fatal to
// the attempt before any normalized chain begins.
func (c *Client) GenerateReference(ctx context.Context) (string, error) {
	var resp generateReferenceResponse
	if err := c.call(ctx, endpointCheckout, "GenerateWebsiteTransactionReference", struct{}{}, &resp); err != nil {
		c.logger.ErrorContext(ctx, "reference generation failed", "error", err)
		return "", fmt.Errorf("%w: generate reference: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.Result == "" {
		c.logger.ErrorContext(ctx, "reference generation returned empty result")
		return "", fmt.Errorf("%w: empty transaction reference", domain.ErrGatewayUnavailable)
	}
	return resp.Result, nil
}

func (c *Client) ValidateCardDetails(ctx context.Context, card domain.CardDetails, billing domain.BillingAddress) domain.CallResult {
	req := validateCardDetailsRequest{PaymentCard: newPaymentCard(card, billing), SecurityCodeRequired: true}
	var resp validateCardDetailsResponse
	if err := c.call(ctx, endpointCard, "ValidateCardDetails", req, &resp); err != nil {
		return c.unavailable(ctx, "ValidateCardDetails", err)
	}
	if resp.Result == nil {
		return c.unavailable(ctx, "ValidateCardDetails", fmt.Errorf("missing result envelope"))
	}
	if resp.Result.IsValid {
		return domain.Succeeded()
	}
	c.logger.InfoContext(ctx, "card details declined", "gateway_message", resp.Result.ErrorResult.message())
	return domain.Declined(resp.Result.ErrorResult.message())
}

func (c *Client) SaveCardAsToken(ctx context.Context, card domain.CardDetails, billing domain.BillingAddress) (string, domain.CallResult) {
	req := saveCardAsTokenRequest{PaymentCard: newPaymentCard(card, billing), SecurityCodeRequired: true}
	var resp saveCardAsTokenResponse
	if err := c.call(ctx, endpointCard, "SaveCardAsToken", req, &resp); err != nil {
		return "", c.unavailable(ctx, "SaveCardAsToken", err)
	}
	if resp.Result == nil {
		return "", c.unavailable(ctx, "SaveCardAsToken", fmt.Errorf("missing result envelope"))
	}
	if !resp.Result.Success {
		c.logger.InfoContext(ctx, "tokenization declined", "gateway_message", resp.Result.ErrorResult.message())
		return "", domain.Declined(resp.Result.ErrorResult.message())
	}
	if resp.Result.Token == "" {
		// Success flag with no token is a contract violation, not a decline.
		return "", c.unavailable(ctx, "SaveCardAsToken", fmt.Errorf("success without token"))
	}
	return resp.Result.Token, domain.Succeeded()
}

func (c *Client) ValidateAccount(ctx context.Context, account domain.BankAccountDetails) domain.CallResult {
	req := validateAccountRequest{Account: bankAccount{
		Accountholder: account.AccountHolder,
		AccountCode:   account.AccountNumber,
		BranchCode:    account.SortCode,
		Type:          "UK",
	}}
	var resp validateAccountResponse
	if err := c.call(ctx, endpointBank, "ValidateAccount", req, &resp); err != nil {
		return c.unavailable(ctx, "ValidateAccount", err)
	}
	if resp.Result == nil {
		return c.unavailable(ctx, "ValidateAccount", fmt.Errorf("missing result envelope"))
	}
	if resp.Result.IsValid {
		return domain.Succeeded()
	}
	message := resp.Result.ErrorResult.message()
	if message == "" {
		message = domain.InvalidBankDetailsMessage
	}
	c.logger.InfoContext(ctx, "bank account declined", "gateway_message", message)
	return domain.Declined(message)
}

func (c *Client) AuthoriseWebTransaction(ctx context.Context, req domain.WebAuthorisationRequest) (*domain.WebAuthorisation, domain.CallResult) {
	wireReq := authoriseWebTransactionRequest{Transaction: webTransaction{
		Reference:   req.Reference,
		PaymentCard: newPaymentCard(req.Card, req.Billing),
		Amount:      req.TotalMinor,
		Currency:    req.Currency,
		UserIp:      req.UserIP,
	}}
	var resp authoriseWebTransactionResponse
	if err := c.call(ctx, endpointCard, "AuthoriseWebTransaction", wireReq, &resp); err != nil {
		return nil, c.unavailable(ctx, "AuthoriseWebTransaction", err)
	}
	r := resp.Result
	if r == nil {
		return nil, c.unavailable(ctx, "AuthoriseWebTransaction", fmt.Errorf("missing result envelope"))
	}
	if r.Secure3DResult != nil && r.Secure3DResult.Secure3DRequired {
		if r.Secure3DResult.Html == "" {
			return nil, c.unavailable(ctx, "AuthoriseWebTransaction", fmt.Errorf("challenge required without payload"))
		}
		return &domain.WebAuthorisation{ChallengeRequired: true, ChallengePayload: r.Secure3DResult.Html}, domain.Succeeded()
	}
	if r.Authorised != nil {
		if !*r.Authorised {
			c.logger.InfoContext(ctx, "web authorisation declined", "gateway_message", r.ErrorResult.message())
			return nil, domain.Declined(r.ErrorResult.message())
		}
		if r.AcquirerAuthorisationCode == "" {
			return nil, c.unavailable(ctx, "AuthoriseWebTransaction", fmt.Errorf("authorised without acquirer code"))
		}
		return &domain.WebAuthorisation{AuthorisationCode: r.AcquirerAuthorisationCode}, domain.Succeeded()
	}
	if msg := r.ErrorResult.message(); msg != "" {
		c.logger.InfoContext(ctx, "web authorisation rejected", "gateway_message", msg)
		return nil, domain.Declined(msg)
	}
	return nil, c.unavailable(ctx, "AuthoriseWebTransaction", fmt.Errorf("envelope with neither decision nor error"))
}

func (c *Client) AuthoriseSecure3D(ctx context.Context, params []domain.RequestParameter) (string, domain.CallResult) {
	var wireReq authoriseSecure3DRequest
	wireReq.RequestData.RequestParameter = make([]requestParameter, 0, len(params))
	for _, p := range params {
		wireReq.RequestData.RequestParameter = append(wireReq.RequestData.RequestParameter, requestParameter{Name: p.Name, Value: p.Value})
	}

	var resp authoriseSecure3DResponse
	if err := c.call(ctx, endpointCard, "AuthoriseSecure3DTransaction", wireReq, &resp); err != nil {
		return "", c.unavailable(ctx, "AuthoriseSecure3DTransaction", err)
	}
	r := resp.Result
	if r == nil {
		return "", c.unavailable(ctx, "AuthoriseSecure3DTransaction", fmt.Errorf("missing result envelope"))
	}
	if r.Authorised == nil {
		if msg := r.ErrorResult.message(); msg != "" {
			c.logger.InfoContext(ctx, "secure challenge rejected", "gateway_message", msg)
			return "", domain.Declined(msg)
		}
		return "", c.unavailable(ctx, "AuthoriseSecure3DTransaction", fmt.Errorf("envelope without authorisation flag"))
	}
	if !*r.Authorised {
		c.logger.InfoContext(ctx, "secure challenge declined", "gateway_message", r.ErrorResult.message())
		return "", domain.Declined(domain.CardNotAuthorisedMessage)
	}
	if r.AcquirerAuthorisationCode == "" {
		return "", c.unavailable(ctx, "AuthoriseSecure3DTransaction", fmt.Errorf("authorised without acquirer code"))
	}
	return r.AcquirerAuthorisationCode, domain.Succeeded()
}

func (c *Client) CheckoutRecurring(ctx context.Context, tx domain.RecurringCheckout) (bool, domain.CallResult) {
	wireTx := recurringTransaction{
		TransactionId:                 tx.TransactionID,
		TransactionTimeUtc:            formatTransactionTime(tx.TimestampUTC),
		BasketCollectionId:            tx.BasketCollectionID,
		Reference:                     tx.Reference,
		UserIp:                        tx.UserIP,
		PaymentDayOfMonth:             tx.PaymentDayOfMonth,
		TargetAmount:                  tx.TargetAmountMinor,
		StopPaymentsWhenTargetReached: tx.StopWhenTargetMet,
	}
	switch tx.Method {
	case domain.PaymentMethodCard:
		wireTx.PaymentMethod = "Card"
		wireTx.PaymentCardDetails = &cardTokenDetails{Token: tx.CardToken}
	case domain.PaymentMethodBankTransfer:
		wireTx.PaymentMethod = "DirectDebit"
		if tx.Bank != nil {
			wireTx.BankAccountDetails = &bankAccount{
				Accountholder: tx.Bank.AccountHolder,
				AccountCode:   tx.Bank.AccountNumber,
				BranchCode:    tx.Bank.SortCode,
				Type:          "UK",
			}
		}
	}

	var resp checkoutRecurringResponse
	if err := c.call(ctx, endpointCheckout, "CheckoutRecurringPaymentTransaction", checkoutRecurringRequest{Transaction: wireTx}, &resp); err != nil {
		return false, c.unavailable(ctx, "CheckoutRecurringPaymentTransaction", err)
	}
	if resp.Result == nil {
		return false, c.unavailable(ctx, "CheckoutRecurringPaymentTransaction", fmt.Errorf("missing settlement flag"))
	}
	return *resp.Result, domain.Succeeded()
}

func (c *Client) CheckoutSingle(ctx context.Context, tx domain.SingleCheckout) (bool, domain.CallResult) {
	wireTx := singleTransaction{
		TransactionId:             tx.TransactionID,
		TransactionTimeUtc:        formatTransactionTime(tx.TimestampUTC),
		BasketCollectionId:        tx.BasketCollectionID,
		Reference:                 tx.Reference,
		UserIp:                    tx.UserIP,
		PaymentMethod:             "Card",
		AcquirerAuthorisationCode: tx.AuthorisationCode,
	}

	var resp checkoutSingleResponse
	if err := c.call(ctx, endpointCheckout, "CheckoutSinglePaymentTransaction", checkoutSingleRequest{Transaction: wireTx}, &resp); err != nil {
		return false, c.unavailable(ctx, "CheckoutSinglePaymentTransaction", err)
	}
	if resp.Result == nil {
		return false, c.unavailable(ctx, "CheckoutSinglePaymentTransaction", fmt.Errorf("missing settlement flag"))
	}
	return *resp.Result, domain.Succeeded()
}
