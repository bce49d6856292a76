package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wpp/internal/services"
	"wpp/internal/sqlstore"
)

// ErrNotFound reports that no transaction row carries the reference.
var ErrNotFound = fmt.Errorf("%w: no persisted transaction", services.ErrNotFound)

const chainQuery = `SELECT
    t.id, t.txn_amount, t.payment_type, t.currency_code, t.txn_reference, t.seriestype, t.method,
    t.payment_detail_id, t.merchant_id,
    p.id, p.card_number, p.card_type, p.exp_year, p.exp_month, p.name_on_card, p.save_details, p.cvv,
    m.id, m.merchant_id, m.customer_id,
    c.id, c.customer_id,
    b.id, b.customer_id, b.first_name, b.last_name, b.mobile_no, b.email_id, b.address_line1,
    b.city, b.state, b.zip, b.country,
    i.id, i.lang, i.merchant_id, i.customer_id, i.transaction_id, i.created_at,
    u.id, u.success_url, u.fail_url
FROM transactions t
JOIN payment_details p ON p.id = t.payment_detail_id
JOIN merchants m ON m.id = t.merchant_id
JOIN intake_records i ON i.transaction_id = t.id
JOIN customers c ON c.id = i.customer_id
JOIN billing_addresses b ON b.customer_id = c.id
LEFT JOIN urls u ON u.transaction_id = t.id
WHERE t.txn_reference = ?
ORDER BY t.id DESC
LIMIT 1`

// FindByReference returns the most recently persisted chain for ref.
func (s *Store) FindByReference(ctx context.Context, ref string) (*Chain, error) {
	ctx = sqlstore.EnsureContext(ctx)
	var (
		chain     Chain
		createdAt timeValue
		urlID     sql.NullInt64
		success   sql.NullString
		fail      sql.NullString
	)
	t := &chain.Transaction
	p := &chain.PaymentDetail
	m := &chain.Merchant
	c := &chain.Customer
	b := &chain.BillingAddress
	i := &chain.IntakeRecord
	err := s.db.QueryRowContext(ctx, s.rebind(chainQuery), ref).Scan(
		&t.ID, &t.Amount, &t.PaymentType, &t.CurrencyCode, &t.TxnReference, &t.SeriesType, &t.Method,
		&t.PaymentDetailID, &t.MerchantID,
		&p.ID, &p.CardNumber, &p.CardType, &p.ExpYear, &p.ExpMonth, &p.NameOnCard, &p.SaveDetails, &p.CVV,
		&m.ID, &m.MerchantID, &m.CustomerID,
		&c.ID, &c.CustomerID,
		&b.ID, &b.CustomerID, &b.FirstName, &b.LastName, &b.MobileNo, &b.EmailID, &b.AddressLine1,
		&b.City, &b.State, &b.Zip, &b.Country,
		&i.ID, &i.Lang, &i.MerchantID, &i.CustomerID, &i.TransactionID, &createdAt,
		&urlID, &success, &fail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(ErrNotFound, "records", "find", fmt.Sprintf("txnReference %q", ref), nil)
	}
	if err != nil {
		return nil, services.Wrap(ErrPersistence, "records", "find", "", err)
	}
	i.CreatedAt = createdAt.t
	if urlID.Valid {
		chain.URL = &URL{ID: urlID.Int64, SuccessURL: success.String, FailURL: fail.String, TransactionID: t.ID}
	}
	return &chain, nil
}

// CountByReference returns how many rows in each table belong to
// transactions carrying ref.
func (s *Store) CountByReference(ctx context.Context, ref string) (map[string]int, error) {
	ctx = sqlstore.EnsureContext(ctx)
	queries := map[string]string{
		"transactions": `SELECT COUNT(*) FROM transactions WHERE txn_reference = ?`,
		"payment_details": `SELECT COUNT(*) FROM payment_details p
            JOIN transactions t ON t.payment_detail_id = p.id WHERE t.txn_reference = ?`,
		"merchants": `SELECT COUNT(*) FROM merchants m
            JOIN transactions t ON t.merchant_id = m.id WHERE t.txn_reference = ?`,
		"urls": `SELECT COUNT(*) FROM urls u
            JOIN transactions t ON u.transaction_id = t.id WHERE t.txn_reference = ?`,
		"intake_records": `SELECT COUNT(*) FROM intake_records i
            JOIN transactions t ON i.transaction_id = t.id WHERE t.txn_reference = ?`,
	}
	counts := make(map[string]int, len(queries))
	for table, query := range queries {
		var n int
		if err := s.db.QueryRowContext(ctx, s.rebind(query), ref).Scan(&n); err != nil {
			return nil, services.Wrap(ErrPersistence, "records", "count", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// TableCounts returns the total row count of every records table.
func (s *Store) TableCounts(ctx context.Context) (map[string]int, error) {
	ctx = sqlstore.EnsureContext(ctx)
	tables := []string{"customers", "billing_addresses", "merchants", "payment_details", "transactions", "urls", "intake_records"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, services.Wrap(ErrPersistence, "records", "count", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
