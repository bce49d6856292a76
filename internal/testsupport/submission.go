package testsupport

import (
	"testing"

	"wpp/internal/submission"
)

// NewSubmission returns a complete submission with the given reference and
// amount, modelled on the documented example payload.
func NewSubmission(ref, amount string) *submission.Submission {
	return &submission.Submission{
		Lang: "en",
		Merchant: submission.Merchant{
			MerchantID: "MER999900001",
			CustomerID: "C77743201213Bv",
		},
		Customer: submission.Customer{
			BillingAddress: submission.BillingAddress{
				FirstName:    "TestName",
				LastName:     "TestLastName",
				MobileNo:     "1234567980",
				EmailID:      "test@test.test",
				AddressLine1: "abc",
				City:         "abc",
				Zip:          "2345",
				Country:      "CY",
			},
		},
		Transaction: submission.Transaction{
			TxnAmount:    amount,
			PaymentType:  "sale",
			CurrencyCode: "EUR",
			TxnReference: ref,
			PaymentDetail: submission.PaymentDetail{
				CardNumber:  "4111111111111111",
				CardType:    "VisaCard",
				ExpYear:     "2030",
				ExpMonth:    "12",
				NameOnCard:  "Test Name",
				SaveDetails: "false",
				CVV:         "987",
			},
		},
		URL: &submission.URL{
			SuccessURL: "https://www.domainname.com/SuccessResponse.html",
			FailURL:    "https://www.domainname.com/FailResponse.html",
		},
	}
}

// MustEncode serializes sub for queue or HTTP tests.
func MustEncode(t testing.TB, sub *submission.Submission) []byte {
	t.Helper()
	data, err := submission.Encode(sub)
	if err != nil {
		t.Fatalf("encode submission: %v", err)
	}
	return data
}
