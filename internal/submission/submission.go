package submission

// Submission is one caller-provided transaction payload. It is immutable once
// received; the txnReference inside Transaction identifies it everywhere.
type Submission struct {
	Lang        string      `json:"lang,omitempty"`
	Merchant    Merchant    `json:"merchant"`
	Customer    Customer    `json:"customer"`
	Transaction Transaction `json:"transaction"`
	URL         *URL        `json:"url,omitempty"`
}

// Merchant carries the external merchant and customer identifiers. The
// customerID here, not anything inside Customer, becomes the persisted
// customer's external id.
type Merchant struct {
	MerchantID string `json:"merchantID"`
	CustomerID string `json:"customerID"`
}

// Customer wraps the billing address supplied with the submission.
type Customer struct {
	BillingAddress BillingAddress `json:"billingAddress"`
}

// BillingAddress holds contact details. State is optional.
type BillingAddress struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNo     string `json:"mobileNo"`
	EmailID      string `json:"emailId"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
}

// Transaction describes the payment. TxnAmount stays a decimal string until
// ParseAmount runs at persistence time.
type Transaction struct {
	TxnAmount     string        `json:"txnAmount"`
	PaymentType   string        `json:"paymentType"`
	CurrencyCode  string        `json:"currencyCode"`
	TxnReference  string        `json:"txnReference"`
	SeriesType    string        `json:"seriestype,omitempty"`
	Method        string        `json:"method,omitempty"`
	PaymentDetail PaymentDetail `json:"paymentDetail"`
}

// PaymentDetail holds the card fields exactly as submitted.
type PaymentDetail struct {
	CardNumber  string `json:"cardNumber"`
	CardType    string `json:"cardType"`
	ExpYear     string `json:"expYear"`
	ExpMonth    string `json:"expMonth"`
	NameOnCard  string `json:"nameOnCard"`
	SaveDetails string `json:"saveDetails"`
	CVV         string `json:"cvv"`
}

// URL is the optional redirect pair.
type URL struct {
	SuccessURL string `json:"successURL"`
	FailURL    string `json:"failURL"`
}

// Reference returns the submission's txnReference.
func (s *Submission) Reference() string {
	if s == nil {
		return ""
	}
	return s.Transaction.TxnReference
}
