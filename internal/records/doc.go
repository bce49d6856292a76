// Package records normalizes a submission into relational rows.
//
// Persist writes the customer, billing address, merchant, payment detail,
// transaction, optional URL and intake record for one submission inside a
// single database transaction; any failure rolls every row back. Surrogate
// ids come back through RETURNING so each foreign key is set only after its
// referent row exists in the transaction.
//
// The merchant row's customer_id copies the external customer id of the
// customer row created in the same transaction, and that customer's external
// id comes from the submission's merchant block rather than its customer
// block. Downstream reports rely on this mapping, so it is kept as is even
// though customer_id on merchants is not a foreign key.
//
// SQLite (modernc.org/sqlite) is the default backend; Postgres is available
// through lib/pq.
package records
