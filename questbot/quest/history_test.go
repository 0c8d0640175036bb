package quest

import (
	"strings"
	"testing"
	"time"

	"github.com/questcord/questbot/questbot/database/models"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
	}{
		{name: "empty history still has one page", total: 0, pageSize: 10, want: 1},
		{name: "partial page", total: 7, pageSize: 10, want: 1},
		{name: "exact page", total: 10, pageSize: 10, want: 1},
		{name: "one over", total: 11, pageSize: 10, want: 2},
		{name: "several pages", total: 35, pageSize: 10, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageCount(tt.total, tt.pageSize); got != tt.want {
				t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		want       int
	}{
		{name: "negative clamps to zero", page: -3, totalPages: 4, want: 0},
		{name: "in range untouched", page: 2, totalPages: 4, want: 2},
		{name: "past end clamps to last", page: 9, totalPages: 4, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.page, tt.totalPages); got != tt.want {
				t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestHistoryPageNavigation(t *testing.T) {
	first := HistoryPage{Page: 0, TotalPages: 3}
	if first.HasPrev() {
		t.Error("first page should not have prev")
	}
	if !first.HasNext() {
		t.Error("first of three pages should have next")
	}

	last := HistoryPage{Page: 2, TotalPages: 3}
	if !last.HasPrev() {
		t.Error("last page should have prev")
	}
	if last.HasNext() {
		t.Error("last page should not have next")
	}

	only := HistoryPage{Page: 0, TotalPages: 1}
	if only.HasPrev() || only.HasNext() {
		t.Error("single page should have neither direction")
	}
}

func TestFormatHistoryEntry(t *testing.T) {
	reviewed := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "Like the launch post", Points: 100}

	approved := &models.Submission{
		Status:     models.SubmissionApproved,
		ReviewedAt: &reviewed,
		Task:       task,
	}
	got := FormatHistoryEntry(approved)
	for _, want := range []string{"✅", "Like the launch post", "Approved", "+100 pts", "Mar 09, 2025"} {
		if !strings.Contains(got, want) {
			t.Errorf("approved entry missing %q in %q", want, got)
		}
	}

	rejected := &models.Submission{
		Status: models.SubmissionRejected,
		Task:   task,
	}
	got = FormatHistoryEntry(rejected)
	if !strings.Contains(got, "❌") || !strings.Contains(got, "Rejected") {
		t.Errorf("rejected entry rendered wrong: %q", got)
	}
	if strings.Contains(got, "pts") {
		t.Errorf("rejected entry must not show points: %q", got)
	}
	if !strings.Contains(got, "N/A") {
		t.Errorf("missing review date should render N/A: %q", got)
	}
}
