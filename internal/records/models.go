package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a persisted customer row.
type Customer struct {
	ID         int64
	CustomerID string
}

// BillingAddress is owned by exactly one Customer.
type BillingAddress struct {
	ID           int64
	CustomerID   int64
	FirstName    string
	LastName     string
	MobileNo     string
	EmailID      string
	AddressLine1 string
	City         string
	State        string
	Zip          string
	Country      string
}

// Merchant carries a copy of the external customer id, not a foreign key.
type Merchant struct {
	ID         int64
	MerchantID string
	CustomerID string
}

// PaymentDetail holds card fields as submitted.
type PaymentDetail struct {
	ID          int64
	CardNumber  string
	CardType    string
	ExpYear     string
	ExpMonth    string
	NameOnCard  string
	SaveDetails string
	CVV         string
}

// Transaction is the persisted payment row.
type Transaction struct {
	ID              int64
	Amount          decimal.Decimal
	PaymentType     string
	CurrencyCode    string
	TxnReference    string
	SeriesType      string
	Method          string
	PaymentDetailID int64
	MerchantID      int64
}

// URL is the optional redirect pair linked to a Transaction.
type URL struct {
	ID            int64
	SuccessURL    string
	FailURL       string
	TransactionID int64
}

// IntakeRecord audits that a submission was persisted.
type IntakeRecord struct {
	ID            int64
	Lang          string
	MerchantID    int64
	CustomerID    int64
	TransactionID int64
	CreatedAt     time.Time
}

// Receipt lists the surrogate ids created by one Persist call.
type Receipt struct {
	CustomerID       int64
	BillingAddressID int64
	MerchantID       int64
	PaymentDetailID  int64
	TransactionID    int64
	// URLID is zero when the submission had no url block.
	URLID          int64
	IntakeRecordID int64
}

// Chain is every row reachable from one transaction by foreign key.
type Chain struct {
	Transaction    Transaction
	PaymentDetail  PaymentDetail
	Merchant       Merchant
	Customer       Customer
	BillingAddress BillingAddress
	URL            *URL
	IntakeRecord   IntakeRecord
}
