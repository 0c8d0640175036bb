package quest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

// ReviewService drives the admin review pipeline: pending queue,
// approve with atomic credit, reject, and the pending-count dashboard.
type ReviewService struct {
	users      repositories.UserRepository
	subs       repositories.SubmissionRepository
	sender     MessageSender
	notifyCh   snowflake.ID
	milestones []int64
}

func NewReviewService(users repositories.UserRepository, subs repositories.SubmissionRepository, sender MessageSender, notifyCh snowflake.ID, milestones []int64) *ReviewService {
	return &ReviewService{
		users:      users,
		subs:       subs,
		sender:     sender,
		notifyCh:   notifyCh,
		milestones: milestones,
	}
}

// Queue returns the pending submissions offered for review.
func (s *ReviewService) Queue(ctx context.Context) ([]*models.Submission, error) {
	return s.subs.PendingQueue(ctx, config.ReviewQueueCap)
}

// Select loads a submission for review. ErrNotPending is returned when
// another admin got there first.
func (s *ReviewService) Select(ctx context.Context, id int64) (*models.Submission, error) {
	return s.subs.GetPendingWithTask(ctx, id)
}

// Approve flips the submission to approved and credits the reward in
// one transaction; a repeat call fails with ErrNotPending and credits
// nothing. Returns the submission and any milestones the credit crossed.
func (s *ReviewService) Approve(ctx context.Context, id int64) (*models.Submission, []int64, error) {
	// Read the balance first so the milestone window brackets exactly
	// this credit.
	pending, err := s.subs.GetPendingWithTask(ctx, id)
	if err != nil {
		return pending, nil, err
	}
	oldPoints, err := s.users.GetPoints(ctx, pending.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read balance before approve: %w", err)
	}

	sub, err := s.subs.Approve(ctx, id)
	if err != nil {
		return sub, nil, err
	}

	crossed := MilestonesCrossed(oldPoints, oldPoints+sub.Task.Points, s.milestones)
	s.notifyApproved(sub, crossed)
	return sub, crossed, nil
}

// Reject flips the submission to rejected. The ledger is untouched.
func (s *ReviewService) Reject(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.subs.Reject(ctx, id)
	if err != nil {
		return sub, err
	}
	s.notifyRejected(sub)
	return sub, nil
}

func (s *ReviewService) notifyApproved(sub *models.Submission, milestones []int64) {
	if s.notifyCh == 0 {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Hey <@%s>, your submission for **%s** has been **approved**! You earned **%d** points. 🏆",
		sub.UserID, sub.Task.Title, sub.Task.Points)
	for _, m := range milestones {
		fmt.Fprintf(&b, "\n🏅 Milestone reached: **%d points**!", m)
	}

	if _, err := s.sender.CreateMessage(s.notifyCh, discord.MessageCreate{Content: b.String()}); err != nil {
		slog.Error("Failed to send approval notification",
			slog.String("type", "sys"),
			slog.String("user_id", sub.UserID),
			slog.Any("error", err))
	}
}

func (s *ReviewService) notifyRejected(sub *models.Submission) {
	if s.notifyCh == 0 {
		return
	}
	content := fmt.Sprintf("❌ <@%s>, your submission for **%s** has been **rejected**. Please check the task details and try again.",
		sub.UserID, sub.Task.Title)
	if _, err := s.sender.CreateMessage(s.notifyCh, discord.MessageCreate{Content: content}); err != nil {
		slog.Error("Failed to send rejection notification",
			slog.String("type", "sys"),
			slog.String("user_id", sub.UserID),
			slog.Any("error", err))
	}
}

// DashboardStats aggregates per-task pending counts for the review
// dashboard. Read-only; eventual consistency is fine here.
func (s *ReviewService) DashboardStats(ctx context.Context) ([]repositories.TaskPendingStats, error) {
	return s.subs.PendingStats(ctx)
}

// StatsBar renders a pending/total ratio bar for the dashboard.
func StatsBar(current, total, length int) string {
	if total <= 0 {
		return strings.Repeat("▱", length)
	}
	filled := length * current / total
	if filled > length {
		filled = length
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", length-filled)
}
