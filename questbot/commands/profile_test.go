package commands

import (
	"context"
	"testing"

	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

type profileUsers struct {
	repositories.UserRepository
	ensured []string
	points  map[string]int64
}

func (f *profileUsers) Ensure(_ context.Context, discordID string) error {
	f.ensured = append(f.ensured, discordID)
	return nil
}

func (f *profileUsers) GetPoints(_ context.Context, discordID string) (int64, error) {
	return f.points[discordID], nil
}

type profileSubs struct {
	repositories.SubmissionRepository
	total    int
	byStatus map[string]int
}

func (f *profileSubs) CountForUser(_ context.Context, _ string) (int, error) {
	return f.total, nil
}

func (f *profileSubs) CountByStatus(_ context.Context, _ string, status string) (int, error) {
	return f.byStatus[status], nil
}

func TestLoadProfileEnsuresLedgerRow(t *testing.T) {
	users := &profileUsers{points: map[string]int64{"user1": 1200}}
	subs := &profileSubs{total: 3, byStatus: map[string]int{
		models.SubmissionApproved: 2,
		models.SubmissionRejected: 1,
	}}
	b := &questbot.Bot{UserRepository: users, SubmissionRepository: subs}

	view, err := loadProfile(context.Background(), b, "user1")
	if err != nil {
		t.Fatalf("loadProfile returned error: %v", err)
	}
	// A first view must create the ledger row, not just read zeros.
	if len(users.ensured) != 1 || users.ensured[0] != "user1" {
		t.Errorf("ensured = %v, want [user1]", users.ensured)
	}
	if view.Points != 1200 || view.Rank != "🌟 Adventurer" {
		t.Errorf("view = %+v, want 1200 points at Adventurer", view)
	}
	if view.Total != 3 || view.Approved != 2 || view.Rejected != 1 {
		t.Errorf("counts = %+v, want 3/2/1", view)
	}
}

func TestLoadProfileNewUserReadsZeros(t *testing.T) {
	users := &profileUsers{points: map[string]int64{}}
	subs := &profileSubs{byStatus: map[string]int{}}
	b := &questbot.Bot{UserRepository: users, SubmissionRepository: subs}

	view, err := loadProfile(context.Background(), b, "user2")
	if err != nil {
		t.Fatalf("loadProfile returned error: %v", err)
	}
	if len(users.ensured) != 1 {
		t.Errorf("ensured = %v, want the viewed user", users.ensured)
	}
	if view.Points != 0 || view.Rank != "🎈 Newbie" {
		t.Errorf("view = %+v, want a zeroed Newbie profile", view)
	}
}
