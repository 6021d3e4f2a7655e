package http

import (
	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
)

// CheckoutPaymentRequestDTO carries the step-1 address fields and step-2
// payment fields in one submission. Exactly one payment method's field set is
// expected, matching payment_method.
type CheckoutPaymentRequestDTO struct {
	// Step 1 - address details
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address1  string `json:"address1" validate:"required"`
	Address2  string `json:"address2"`
	Address3  string `json:"address3"`
	Town      string `json:"town" validate:"required"`
	State     string `json:"state"`
	Postcode  string `json:"postcode" validate:"required"`
	Country   string `json:"country" validate:"required,len=2"`

	// Step 2 - payment details
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card bank_transfer"`
	CaptureMode   string `json:"capture_mode" validate:"omitempty,oneof=recurring single"`

	NameOnCard     string `json:"name_on_card" validate:"required_if=PaymentMethod card"`
	CardNumber     string `json:"card_number" validate:"required_if=PaymentMethod card"`
	ExpiryMonth    string `json:"expiry_month" validate:"required_if=PaymentMethod card"`
	ExpiryYear     string `json:"expiry_year" validate:"required_if=PaymentMethod card"`
	ValidFromMonth string `json:"valid_from_month"`
	ValidFromYear  string `json:"valid_from_year"`
	IssueNumber    string `json:"issue_number"`
	SecurityCode   string `json:"security_code" validate:"required_if=PaymentMethod card"`

	AccountName   string `json:"account_name" validate:"required_if=PaymentMethod bank_transfer"`
	AccountNumber string `json:"account_number" validate:"required_if=PaymentMethod bank_transfer"`
	SortCode      string `json:"sort_code" validate:"required_if=PaymentMethod bank_transfer"`
}

func (d *CheckoutPaymentRequestDTO) toSubmission(userIP string) domain.CheckoutSubmission {
	sub := domain.CheckoutSubmission{
		Billing: domain.BillingAddress{
			FirstNames:  d.FirstName,
			LastName:    d.LastName,
			Address1:    d.Address1,
			Address2:    d.Address2,
			Address3:    d.Address3,
			TownCity:    d.Town,
			State:       d.State,
			PostalCode:  d.Postcode,
			CountryCode: d.Country,
		},
		Method:  domain.PaymentMethod(d.PaymentMethod),
		Capture: domain.CaptureMode(d.CaptureMode),
		UserIP:  userIP,
	}
	switch sub.Method {
	case domain.PaymentMethodCard:
		sub.Card = &domain.CardDetails{
			Cardholder:   d.NameOnCard,
			CardNumber:   d.CardNumber,
			ExpiryMonth:  d.ExpiryMonth,
			ExpiryYear:   d.ExpiryYear,
			StartMonth:   d.ValidFromMonth,
			StartYear:    d.ValidFromYear,
			IssueNumber:  d.IssueNumber,
			SecurityCode: d.SecurityCode,
		}
	case domain.PaymentMethodBankTransfer:
		sub.Bank = &domain.BankAccountDetails{
			AccountHolder: d.AccountName,
			AccountNumber: d.AccountNumber,
			SortCode:      d.SortCode,
		}
	}
	return sub
}

// AttemptOutcomeResponseDTO is the uniform response for both entry points.
type AttemptOutcomeResponseDTO struct {
	Status    string `json:"status"`
	Settled   bool   `json:"settled,omitempty"`
	Reference string `json:"reference,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	Message   string `json:"message,omitempty"`
}
