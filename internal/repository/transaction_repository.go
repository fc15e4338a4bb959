package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arsouza/fintrack/internal/model"
)

// TransactionRepo provides per-user access to the transactions table.
// Every query is scoped by user_id so one account can never read or
// delete another account's rows.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

const txnColumns = "id,user_id,description,amount_cents,type,occurred_on,created_at"

// Create inserts a transaction and returns its id.
func (r *TransactionRepo) Create(ctx context.Context, t model.Transaction) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO transactions (user_id, description, amount_cents, type, occurred_on) VALUES (?,?,?,?,?)",
		t.UserID, t.Description, t.AmountCents, t.Type, t.OccurredOn)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns all transactions belonging to a user, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE user_id=? ORDER BY occurred_on DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListByUserAndDateRange returns the user's transactions whose
// occurred_on date falls within [start, end] inclusive.
func (r *TransactionRepo) ListByUserAndDateRange(ctx context.Context, userID uint64, start, end time.Time) ([]model.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+txnColumns+" FROM transactions WHERE user_id=? AND occurred_on BETWEEN ? AND ? ORDER BY occurred_on DESC, id DESC",
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// DeleteByID removes a transaction owned by userID; sql.ErrNoRows when
// no such row exists (including rows owned by someone else).
func (r *TransactionRepo) DeleteByID(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM transactions WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.AmountCents, &t.Type, &t.OccurredOn, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
