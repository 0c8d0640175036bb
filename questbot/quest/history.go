package quest

import (
	"context"
	"fmt"

	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

// HistoryPage is one page of a user's reviewed submissions, newest
// first. A page is stateless given (user, index) and safe to rebuild on
// every navigation click.
type HistoryPage struct {
	Entries    []*models.Submission
	Page       int
	TotalPages int
}

// HasPrev reports whether backward navigation is possible.
func (p HistoryPage) HasPrev() bool { return p.Page > 0 }

// HasNext reports whether forward navigation is possible.
func (p HistoryPage) HasNext() bool { return p.Page < p.TotalPages-1 }

// PageCount returns ceil(total/pageSize), with a floor of one page so
// an empty history still renders.
func PageCount(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage bounds a requested page index to the valid range.
func ClampPage(page, totalPages int) int {
	if page < 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

// HistoryService pages a user's reviewed submissions.
type HistoryService struct {
	subs repositories.SubmissionRepository
}

func NewHistoryService(subs repositories.SubmissionRepository) *HistoryService {
	return &HistoryService{subs: subs}
}

// Page loads one page of the user's reviewed history.
func (s *HistoryService) Page(ctx context.Context, userID string, page int) (HistoryPage, error) {
	total, err := s.subs.CountReviewed(ctx, userID)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("failed to count reviewed submissions: %w", err)
	}

	totalPages := PageCount(total, config.HistoryPageSize)
	page = ClampPage(page, totalPages)

	entries, err := s.subs.Reviewed(ctx, userID, config.HistoryPageSize, page*config.HistoryPageSize)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("failed to load reviewed submissions: %w", err)
	}

	return HistoryPage{Entries: entries, Page: page, TotalPages: totalPages}, nil
}

// FormatHistoryEntry renders one reviewed submission for the history
// embed.
func FormatHistoryEntry(sub *models.Submission) string {
	statusEmoji, statusText, pointsText := "❌", "Rejected", ""
	if sub.Status == models.SubmissionApproved {
		statusEmoji, statusText = "✅", "Approved"
		pointsText = fmt.Sprintf(" (+%d pts)", sub.Task.Points)
	}

	reviewedAt := "N/A"
	if sub.ReviewedAt != nil {
		reviewedAt = sub.ReviewedAt.Format("Jan 02, 2006")
	}

	return fmt.Sprintf("%s **%s**\n↳ Status: `%s`%s\n↳ Reviewed: `%s`",
		statusEmoji, sub.Task.Title, statusText, pointsText, reviewedAt)
}
