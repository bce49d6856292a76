package submission

import (
	"fmt"
	"strings"

	"wpp/internal/services"
)

// ErrMissingField reports a required field that is absent or blank.
var ErrMissingField = fmt.Errorf("%w: missing required field", services.ErrValidation)

// MissingFieldsError lists every required field that was absent, using the
// wire paths (for example "transaction.paymentDetail.cvv").
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required field(s): " + strings.Join(e.Fields, ", ")
}

// Unwrap lets errors.Is match ErrMissingField and services.ErrValidation.
func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingField
}

type field struct {
	path  string
	value string
}

// Validate reports every required field that is empty. Only lang, state,
// seriestype, method and the url block are optional; a present url block
// needs both URLs.
func (s *Submission) Validate() error {
	if s == nil {
		return &MissingFieldsError{Fields: []string{"submission"}}
	}
	addr := s.Customer.BillingAddress
	txn := s.Transaction
	card := txn.PaymentDetail
	required := []field{
		{"merchant.merchantID", s.Merchant.MerchantID},
		{"merchant.customerID", s.Merchant.CustomerID},
		{"customer.billingAddress.firstName", addr.FirstName},
		{"customer.billingAddress.lastName", addr.LastName},
		{"customer.billingAddress.mobileNo", addr.MobileNo},
		{"customer.billingAddress.emailId", addr.EmailID},
		{"customer.billingAddress.addressLine1", addr.AddressLine1},
		{"customer.billingAddress.city", addr.City},
		{"customer.billingAddress.zip", addr.Zip},
		{"customer.billingAddress.country", addr.Country},
		{"transaction.txnAmount", txn.TxnAmount},
		{"transaction.paymentType", txn.PaymentType},
		{"transaction.currencyCode", txn.CurrencyCode},
		{"transaction.txnReference", txn.TxnReference},
		{"transaction.paymentDetail.cardNumber", card.CardNumber},
		{"transaction.paymentDetail.cardType", card.CardType},
		{"transaction.paymentDetail.expYear", card.ExpYear},
		{"transaction.paymentDetail.expMonth", card.ExpMonth},
		{"transaction.paymentDetail.nameOnCard", card.NameOnCard},
		{"transaction.paymentDetail.saveDetails", card.SaveDetails},
		{"transaction.paymentDetail.cvv", card.CVV},
	}
	if s.URL != nil {
		required = append(required,
			field{"url.successURL", s.URL.SuccessURL},
			field{"url.failURL", s.URL.FailURL},
		)
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.path)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
