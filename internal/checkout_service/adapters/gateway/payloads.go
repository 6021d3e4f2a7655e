package gateway

import (
	"time"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// Wire shapes for the three gateway services. Field names follow the gateway
// contract; every operation has an explicit tagged request/response pair so a
// silently missing field fails classification instead of passing through.

type paymentCard struct {
	Cardholder         string `json:"Cardholder"`
	CardNumber         string `json:"CardNumber"`
	ExpiryMonth        string `json:"ExpiryMonth"`
	ExpiryYear         string `json:"ExpiryYear"`
	StartMonth         string `json:"StartMonth,omitempty"`
	StartYear          string `json:"StartYear,omitempty"`
	IssueNumber        string `json:"IssueNumber"`
	SecurityCode       string `json:"SecurityCode"`
	BillingFirstNames  string `json:"BillingFirstNames"`
	BillingLastName    string `json:"BillingLastName"`
	BillingAddress1    string `json:"BillingAddress1"`
	BillingAddress2    string `json:"BillingAddress2"`
	BillingAddress3    string `json:"BillingAddress3"`
	BillingTownCity    string `json:"BillingTownCity"`
	BillingState       string `json:"BillingState"`
	BillingPostalCode  string `json:"BillingPostalCode"`
	BillingCountryCode string `json:"BillingCountryCode"`
}

func newPaymentCard(card domain.CardDetails, billing domain.BillingAddress) paymentCard {
	return paymentCard{
		Cardholder:         card.Cardholder,
		CardNumber:         card.CardNumber,
		ExpiryMonth:        card.ExpiryMonth,
		ExpiryYear:         card.ExpiryYear,
		StartMonth:         card.StartMonth,
		StartYear:          card.StartYear,
		IssueNumber:        card.IssueNumber,
		SecurityCode:       card.SecurityCode,
		BillingFirstNames:  billing.FirstNames,
		BillingLastName:    billing.LastName,
		BillingAddress1:    billing.Address1,
		BillingAddress2:    billing.Address2,
		BillingAddress3:    billing.Address3,
		BillingTownCity:    billing.TownCity,
		BillingState:       billing.State,
		BillingPostalCode:  billing.PostalCode,
		BillingCountryCode: billing.CountryCode,
	}
}

type errorResult struct {
	Message string `json:"Message"`
}

func (e *errorResult) message() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// --- card-payments service ---

type validateCardDetailsRequest struct {
	PaymentCard          paymentCard `json:"paymentCard"`
	SecurityCodeRequired bool        `json:"securityCodeRequired"`
}

type validateCardDetailsResponse struct {
	Result *struct {
		IsValid     bool         `json:"IsValid"`
		ErrorResult *errorResult `json:"ErrorResult"`
	} `json:"ValidateCardDetailsResult"`
}

type saveCardAsTokenRequest struct {
	PaymentCard          paymentCard `json:"paymentCard"`
	SecurityCodeRequired bool        `json:"securityCodeRequired"`
}

type saveCardAsTokenResponse struct {
	Result *struct {
		Success     bool         `json:"Success"`
		Token       string       `json:"Token"`
		ErrorResult *errorResult `json:"ErrorResult"`
	} `json:"SaveCardAsTokenResult"`
}

type authoriseWebTransactionRequest struct {
	Transaction webTransaction `json:"transaction"`
}

type webTransaction struct {
	Reference   string      `json:"Reference"`
	PaymentCard paymentCard `json:"paymentCard"`
	Amount      int64       `json:"Amount"`
	Currency    string      `json:"Currency"`
	UserIp      string      `json:"UserIp"`
}

type authoriseWebTransactionResponse struct {
	Result *struct {
		Secure3DResult *struct {
			Secure3DRequired bool   `json:"Secure3DRequired"`
			Html             string `json:"Html"`
		} `json:"Secure3DResult"`
		Authorised                *bool        `json:"Authorised"`
		AcquirerAuthorisationCode string       `json:"AcquirerAuthorisationCode"`
		ErrorResult               *errorResult `json:"ErrorResult"`
	} `json:"AuthoriseWebTransactionResult"`
}

type authoriseSecure3DRequest struct {
	RequestData struct {
		RequestParameter []requestParameter `json:"RequestParameter"`
	} `json:"requestData"`
}

type requestParameter struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type authoriseSecure3DResponse struct {
	Result *struct {
		Authorised                *bool        `json:"Authorised"`
		AcquirerAuthorisationCode string       `json:"AcquirerAuthorisationCode"`
		ErrorResult               *errorResult `json:"ErrorResult"`
	} `json:"AuthoriseSecure3DTransactionResult"`
}

// --- bank-payments service ---

type validateAccountRequest struct {
	Account bankAccount `json:"account"`
}

type bankAccount struct {
	Accountholder string `json:"Accountholder"`
	AccountCode   string `json:"AccountCode"`
	BranchCode    string `json:"BranchCode"`
	Type          string `json:"Type"`
}

type validateAccountResponse struct {
	Result *struct {
		IsValid     bool         `json:"IsValid"`
		ErrorResult *errorResult `json:"ErrorResult"`
	} `json:"ValidateAccountResult"`
}

// --- website-checkout service ---

type generateReferenceResponse struct {
	Result string `json:"GenerateWebsiteTransactionReferenceResult"`
}

type cardTokenDetails struct {
	Token string `json:"Token"`
}

type recurringTransaction struct {
	TransactionId                 string            `json:"TransactionId"`
	TransactionTimeUtc            string            `json:"TransactionTimeUtc"`
	BasketCollectionId            string            `json:"BasketCollectionId"`
	Reference                     string            `json:"Reference"`
	UserIp                        string            `json:"UserIp"`
	PaymentMethod                 string            `json:"PaymentMethod"`
	PaymentDayOfMonth             int               `json:"PaymentDayOfMonth"`
	TargetAmount                  *int64            `json:"TargetAmount"`
	StopPaymentsWhenTargetReached *bool             `json:"StopPaymentsWhenTargetReached"`
	PaymentCardDetails            *cardTokenDetails `json:"PaymentCardDetails,omitempty"`
	BankAccountDetails            *bankAccount      `json:"BankAccountDetails,omitempty"`
}

type checkoutRecurringRequest struct {
	Transaction recurringTransaction `json:"transaction"`
}

type checkoutRecurringResponse struct {
	Result *bool `json:"CheckoutRecurringPaymentTransactionResult"`
}

type singleTransaction struct {
	TransactionId             string `json:"TransactionId"`
	TransactionTimeUtc        string `json:"TransactionTimeUtc"`
	BasketCollectionId        string `json:"BasketCollectionId"`
	Reference                 string `json:"Reference"`
	UserIp                    string `json:"UserIp"`
	PaymentMethod             string `json:"PaymentMethod"`
	AcquirerAuthorisationCode string `json:"AcquirerAuthorisationCode"`
}

type checkoutSingleRequest struct {
	Transaction singleTransaction `json:"transaction"`
}

type checkoutSingleResponse struct {
	Result *bool `json:"CheckoutSinglePaymentTransactionResult"`
}

const gatewayTimeLayout = "2006-01-02T15:04:05Z"

func formatTransactionTime(t time.Time) string {
	return t.UTC().Format(gatewayTimeLayout)
}
