package model

import "time"

// Transaction kinds persisted in the transactions.type column.
const (
	TxnIncome  = "INCOME"
	TxnExpense = "EXPENSE"
)

// Transaction represents a row in the `transactions` table. Amounts are
// stored as integer cents to avoid floating-point drift. OccurredOn is a
// calendar date (DATE column); CreatedAt records when the row was written.
type Transaction struct {
	ID          uint64    // transactions.id
	UserID      uint64    // transactions.user_id (owner)
	Description string    // transactions.description
	AmountCents int64     // transactions.amount_cents
	Type        string    // transactions.type (INCOME or EXPENSE)
	OccurredOn  time.Time // transactions.occurred_on (date only)
	CreatedAt   time.Time // transactions.created_at
}
