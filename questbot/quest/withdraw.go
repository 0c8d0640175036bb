package quest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

// WithdrawalForm carries the payout details collected step by step.
type WithdrawalForm struct {
	BankName      string
	AccountNumber string
	AccountName   string
	Points        int64
}

// WithdrawService runs the multi-step withdrawal negotiation:
// eligibility, sequential detail collection (driven by the caller),
// amount validation, and the atomic debit-plus-record commit. At most
// one negotiation runs per user at a time.
type WithdrawService struct {
	users       repositories.UserRepository
	withdrawals repositories.WithdrawalRepository
	minimum     int64
	sessions    sync.Map // userID -> struct{}
}

func NewWithdrawService(users repositories.UserRepository, withdrawals repositories.WithdrawalRepository, minimum int64) *WithdrawService {
	return &WithdrawService{
		users:       users,
		withdrawals: withdrawals,
		minimum:     minimum,
	}
}

func (s *WithdrawService) Minimum() int64 {
	return s.minimum
}

// TryBegin claims the user's negotiation slot. It fails if a prior
// negotiation is still in flight.
func (s *WithdrawService) TryBegin(userID string) bool {
	_, loaded := s.sessions.LoadOrStore(userID, struct{}{})
	return !loaded
}

// End releases the user's negotiation slot.
func (s *WithdrawService) End(userID string) {
	s.sessions.Delete(userID)
}

// Eligible checks the balance floor before any detail is collected.
func (s *WithdrawService) Eligible(ctx context.Context, userID string) (int64, error) {
	balance, err := s.users.GetPoints(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	if balance < s.minimum {
		return balance, Deny(DenyBelowMinimum)
	}
	return balance, nil
}

// ValidateAmount parses and bounds the requested amount against the
// minimum and the live balance. Any failure aborts before the debit.
func (s *WithdrawService) ValidateAmount(raw string, balance int64) (int64, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || amount <= 0 {
		return 0, Deny(DenyNotANumber)
	}
	if amount < s.minimum {
		return 0, Deny(DenyBelowMinimum)
	}
	if amount > balance {
		return 0, Deny(DenyExceedsBalance)
	}
	return amount, nil
}

// Commit debits the balance and records the withdrawal in one
// transaction. The guarded debit makes a concurrent spend of the same
// points impossible: if the balance moved, nothing is written.
func (s *WithdrawService) Commit(ctx context.Context, userID string, form WithdrawalForm) (*models.Withdrawal, error) {
	w := &models.Withdrawal{
		UserID:        userID,
		BankName:      form.BankName,
		AccountNumber: form.AccountNumber,
		AccountName:   form.AccountName,
		Points:        form.Points,
	}
	if err := s.withdrawals.CreateWithDebit(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Get loads a withdrawal for the admin detail view.
func (s *WithdrawService) Get(ctx context.Context, id int64) (*models.Withdrawal, error) {
	return s.withdrawals.Get(ctx, id)
}

// Complete flips a pending withdrawal to completed. The balance was
// debited at Commit and is never re-touched.
func (s *WithdrawService) Complete(ctx context.Context, id int64) error {
	return s.withdrawals.Complete(ctx, id)
}
