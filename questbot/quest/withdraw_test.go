package quest

import (
	"context"
	"errors"
	"testing"

	"github.com/questcord/questbot/questbot/database/repositories"
)

func TestValidateAmount(t *testing.T) {
	s := NewWithdrawService(nil, nil, 1000)

	tests := []struct {
		name       string
		raw        string
		balance    int64
		want       int64
		wantReason DenyReason
		wantDeny   bool
	}{
		{name: "valid amount", raw: "1200", balance: 1500, want: 1200},
		{name: "valid with whitespace", raw: " 1000 ", balance: 1000, want: 1000},
		{name: "not a number", raw: "a lot", balance: 5000, wantDeny: true, wantReason: DenyNotANumber},
		{name: "negative", raw: "-50", balance: 5000, wantDeny: true, wantReason: DenyNotANumber},
		{name: "zero", raw: "0", balance: 5000, wantDeny: true, wantReason: DenyNotANumber},
		{name: "below minimum", raw: "999", balance: 5000, wantDeny: true, wantReason: DenyBelowMinimum},
		{name: "exceeds balance", raw: "1500", balance: 1200, wantDeny: true, wantReason: DenyExceedsBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ValidateAmount(tt.raw, tt.balance)
			if tt.wantDeny {
				var deny *DenyError
				if !errors.As(err, &deny) {
					t.Fatalf("ValidateAmount(%q, %d) err = %v, want DenyError", tt.raw, tt.balance, err)
				}
				if deny.Reason != tt.wantReason {
					t.Errorf("deny reason = %v, want %v", deny.Reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAmount(%q, %d) unexpected error: %v", tt.raw, tt.balance, err)
			}
			if got != tt.want {
				t.Errorf("ValidateAmount(%q, %d) = %d, want %d", tt.raw, tt.balance, got, tt.want)
			}
		})
	}
}

func TestWithdrawSingleFlight(t *testing.T) {
	s := NewWithdrawService(nil, nil, 1000)

	if !s.TryBegin("user1") {
		t.Fatal("first begin should claim the slot")
	}
	if s.TryBegin("user1") {
		t.Error("second begin while in flight should fail")
	}
	if !s.TryBegin("user2") {
		t.Error("another user's slot is independent")
	}

	s.End("user1")
	if !s.TryBegin("user1") {
		t.Error("slot should be reusable after End")
	}
}

type fakeWithdrawals struct {
	repositories.WithdrawalRepository
	completeErrs map[int64]error
}

func (f *fakeWithdrawals) Complete(_ context.Context, id int64) error {
	return f.completeErrs[id]
}

func TestCompleteKeepsDenialsDistinct(t *testing.T) {
	s := NewWithdrawService(nil, &fakeWithdrawals{completeErrs: map[int64]error{
		1: nil,
		2: repositories.ErrAlreadyCompleted,
		3: repositories.ErrWithdrawalNotFound,
	}}, 1000)

	if err := s.Complete(context.Background(), 1); err != nil {
		t.Errorf("pending withdrawal: err = %v, want nil", err)
	}
	// A repeat completion and a bogus id are different denials and must
	// surface as such to the admin view.
	if err := s.Complete(context.Background(), 2); !errors.Is(err, repositories.ErrAlreadyCompleted) {
		t.Errorf("repeat completion: err = %v, want ErrAlreadyCompleted", err)
	}
	if err := s.Complete(context.Background(), 3); !errors.Is(err, repositories.ErrWithdrawalNotFound) {
		t.Errorf("unknown withdrawal: err = %v, want ErrWithdrawalNotFound", err)
	}
}
