package quest

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

type reviewUsers struct {
	repositories.UserRepository
	points map[string]int64
}

func (f *reviewUsers) GetPoints(_ context.Context, discordID string) (int64, error) {
	return f.points[discordID], nil
}

type reviewSubs struct {
	repositories.SubmissionRepository
	subs map[int64]*models.Submission
}

func (f *reviewSubs) GetPendingWithTask(_ context.Context, id int64) (*models.Submission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, repositories.ErrSubmissionNotFound
	}
	if sub.Status != models.SubmissionPending {
		return sub, repositories.ErrNotPending
	}
	return sub, nil
}

func (f *reviewSubs) Approve(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := f.GetPendingWithTask(ctx, id)
	if err != nil {
		return sub, err
	}
	sub.Status = models.SubmissionApproved
	return sub, nil
}

func (f *reviewSubs) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := f.GetPendingWithTask(ctx, id)
	if err != nil {
		return sub, err
	}
	sub.Status = models.SubmissionRejected
	return sub, nil
}

func newReviewFixture() (*ReviewService, *reviewSubs, *fakeTransport) {
	subs := &reviewSubs{subs: map[int64]*models.Submission{
		7: {
			ID:     7,
			UserID: "user1",
			TaskID: 1,
			Status: models.SubmissionPending,
			Task:   &models.Task{ID: 1, Title: "Like the post", Points: 1120},
		},
	}}
	users := &reviewUsers{points: map[string]int64{"user1": 480}}
	transport := &fakeTransport{}
	svc := NewReviewService(users, subs, transport, snowflake.ID(99), []int64{500, 1000, 1500, 2000})
	return svc, subs, transport
}

func TestApproveCreditsAndReportsMilestones(t *testing.T) {
	svc, _, transport := newReviewFixture()

	// 480 + 1120 = 1600 crosses three tiers in one credit.
	sub, crossed, err := svc.Approve(context.Background(), 7)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if sub.Status != models.SubmissionApproved {
		t.Errorf("status = %q, want approved", sub.Status)
	}
	if want := []int64{500, 1000, 1500}; !reflect.DeepEqual(crossed, want) {
		t.Errorf("crossed = %v, want %v", crossed, want)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(transport.sent))
	}
	content := transport.sent[0].Content
	if !strings.Contains(content, "approved") {
		t.Errorf("notification does not state the verdict: %q", content)
	}
	if !strings.Contains(content, "**500 points**") || !strings.Contains(content, "**1500 points**") {
		t.Errorf("notification does not list the crossed milestones: %q", content)
	}
}

func TestApproveRefusesSecondVerdict(t *testing.T) {
	svc, _, transport := newReviewFixture()

	if _, _, err := svc.Approve(context.Background(), 7); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, crossed, err := svc.Approve(context.Background(), 7)
	if !errors.Is(err, repositories.ErrNotPending) {
		t.Fatalf("second approve err = %v, want ErrNotPending", err)
	}
	if crossed != nil {
		t.Errorf("second approve reported milestones: %v", crossed)
	}
	if len(transport.sent) != 1 {
		t.Errorf("sent %d notifications, want only the first verdict's", len(transport.sent))
	}
}

func TestRejectAfterApproveIsRefused(t *testing.T) {
	svc, _, transport := newReviewFixture()

	if _, _, err := svc.Approve(context.Background(), 7); err != nil {
		t.Fatalf("approve: %v", err)
	}
	sub, err := svc.Reject(context.Background(), 7)
	if !errors.Is(err, repositories.ErrNotPending) {
		t.Fatalf("reject err = %v, want ErrNotPending", err)
	}
	if sub.Status != models.SubmissionApproved {
		t.Errorf("status = %q, the approved verdict must stand", sub.Status)
	}
	if len(transport.sent) != 1 {
		t.Errorf("sent %d notifications, want only the approval", len(transport.sent))
	}
}

func TestRejectNotifiesWithoutCredit(t *testing.T) {
	svc, subs, transport := newReviewFixture()

	sub, err := svc.Reject(context.Background(), 7)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if sub.Status != models.SubmissionRejected {
		t.Errorf("status = %q, want rejected", sub.Status)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(transport.sent))
	}
	content := transport.sent[0].Content
	if !strings.Contains(content, "rejected") {
		t.Errorf("notification does not state the verdict: %q", content)
	}
	if strings.Contains(content, "Milestone") {
		t.Errorf("rejection must not mention milestones: %q", content)
	}
	if subs.subs[7].Status != models.SubmissionRejected {
		t.Errorf("stored status = %q, want rejected", subs.subs[7].Status)
	}
}

func TestStatsBar(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		length  int
		want    string
	}{
		{name: "empty total", current: 0, total: 0, length: 5, want: "▱▱▱▱▱"},
		{name: "none pending", current: 0, total: 10, length: 5, want: "▱▱▱▱▱"},
		{name: "half", current: 5, total: 10, length: 10, want: "▰▰▰▰▰▱▱▱▱▱"},
		{name: "all pending", current: 10, total: 10, length: 5, want: "▰▰▰▰▰"},
		{name: "rounds down", current: 1, total: 3, length: 10, want: "▰▰▰▱▱▱▱▱▱▱"},
		{name: "current above total caps", current: 15, total: 10, length: 5, want: "▰▰▰▰▰"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatsBar(tt.current, tt.total, tt.length); got != tt.want {
				t.Errorf("StatsBar(%d, %d, %d) = %q, want %q", tt.current, tt.total, tt.length, got, tt.want)
			}
		})
	}
}
