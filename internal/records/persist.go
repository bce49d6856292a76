package records

import (
	"context"
	"database/sql"
	"time"

	"wpp/internal/services"
	"wpp/internal/submission"
)

// Persist writes every row for sub in one transaction and returns the ids it
// created. Validation and amount parsing failures are returned before the
// transaction opens; store failures roll back the whole unit and match
// ErrPersistence. Persist never touches submission status.
func (s *Store) Persist(ctx context.Context, sub *submission.Submission) (Receipt, error) {
	if err := sub.Validate(); err != nil {
		return Receipt{}, services.Wrap(submission.ErrMissingField, "records", "persist", "validate submission", err)
	}
	amount, err := submission.ParseAmount(sub.Transaction.TxnAmount)
	if err != nil {
		return Receipt{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Receipt{}, persistenceError("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var r Receipt
	addr := sub.Customer.BillingAddress
	txn := sub.Transaction
	card := txn.PaymentDetail

	// The customer's external id comes from the merchant block.
	var customerExternalID string
	if err := tx.QueryRowContext(ctx,
		s.rebind(`INSERT INTO customers (customer_id) VALUES (?) RETURNING id, customer_id`),
		sub.Merchant.CustomerID,
	).Scan(&r.CustomerID, &customerExternalID); err != nil {
		return Receipt{}, persistenceError("insert customer", err)
	}

	if r.BillingAddressID, err = s.insert(ctx, tx,
		`INSERT INTO billing_addresses (
            customer_id, first_name, last_name, mobile_no, email_id,
            address_line1, city, state, zip, country
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		r.CustomerID, addr.FirstName, addr.LastName, addr.MobileNo, addr.EmailID,
		addr.AddressLine1, addr.City, addr.State, addr.Zip, addr.Country,
	); err != nil {
		return Receipt{}, persistenceError("insert billing address", err)
	}

	if r.MerchantID, err = s.insert(ctx, tx,
		`INSERT INTO merchants (merchant_id, customer_id) VALUES (?, ?) RETURNING id`,
		sub.Merchant.MerchantID, customerExternalID,
	); err != nil {
		return Receipt{}, persistenceError("insert merchant", err)
	}

	if r.PaymentDetailID, err = s.insert(ctx, tx,
		`INSERT INTO payment_details (
            card_number, card_type, exp_year, exp_month, name_on_card, save_details, cvv
        ) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		card.CardNumber, card.CardType, card.ExpYear, card.ExpMonth, card.NameOnCard, card.SaveDetails, card.CVV,
	); err != nil {
		return Receipt{}, persistenceError("insert payment detail", err)
	}

	if r.TransactionID, err = s.insert(ctx, tx,
		`INSERT INTO transactions (
            txn_amount, payment_type, currency_code, txn_reference, seriestype, method,
            payment_detail_id, merchant_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		amount, txn.PaymentType, txn.CurrencyCode, txn.TxnReference, txn.SeriesType, txn.Method,
		r.PaymentDetailID, r.MerchantID,
	); err != nil {
		return Receipt{}, persistenceError("insert transaction", err)
	}

	if sub.URL != nil {
		if r.URLID, err = s.insert(ctx, tx,
			`INSERT INTO urls (success_url, fail_url, transaction_id) VALUES (?, ?, ?) RETURNING id`,
			sub.URL.SuccessURL, sub.URL.FailURL, r.TransactionID,
		); err != nil {
			return Receipt{}, persistenceError("insert url", err)
		}
	}

	if r.IntakeRecordID, err = s.insert(ctx, tx,
		`INSERT INTO intake_records (lang, merchant_id, customer_id, transaction_id, created_at)
         VALUES (?, ?, ?, ?, ?) RETURNING id`,
		submission.CanonicalLocale(sub.Lang), r.MerchantID, r.CustomerID, r.TransactionID, s.timeArg(time.Now()),
	); err != nil {
		return Receipt{}, persistenceError("insert intake record", err)
	}

	if err := tx.Commit(); err != nil {
		return Receipt{}, persistenceError("commit", err)
	}
	return r, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	var id int64
	if err := tx.QueryRowContext(ctx, s.rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
