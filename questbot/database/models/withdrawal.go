package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Withdrawal states. Points are debited when the row is created, so the
// row is an audit trail, not a reservation.
const (
	WithdrawalPending   = "pending"
	WithdrawalCompleted = "completed"
)

// Withdrawal records a request to convert points into an external payout.
type Withdrawal struct {
	bun.BaseModel `bun:"table:withdrawals,alias:w"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        string    `bun:"user_id,notnull"`
	BankName      string    `bun:"bank_name,notnull"`
	AccountNumber string    `bun:"account_number,notnull"`
	AccountName   string    `bun:"account_name,notnull"`
	Points        int64     `bun:"points,notnull"`
	Status        string    `bun:"status,notnull,default:'pending'"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
