package quest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/database/models"
)

func TestBoardButtonLabel(t *testing.T) {
	entry := BoardEntry{
		Task: &models.Task{
			Title:          "Retweet the launch",
			Points:         150,
			MaxSubmissions: 25,
			Type:           models.TaskTypeRetweet,
		},
		Done: 3,
	}
	got := BoardButtonLabel(entry)
	for _, want := range []string{"🔁", "Retweet the launch", "(150 pts)", "[3/25]"} {
		if !strings.Contains(got, want) {
			t.Errorf("label missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "⭐") {
		t.Errorf("non-daily quest must not carry the star: %q", got)
	}

	entry.Task.Daily = true
	if got := BoardButtonLabel(entry); !strings.Contains(got, "⭐") {
		t.Errorf("daily quest should carry the star: %q", got)
	}
}

func TestBoardButtonLabelTruncation(t *testing.T) {
	entry := BoardEntry{
		Task: &models.Task{
			Title:          strings.Repeat("очень-длинное-название-", 8),
			Points:         10,
			MaxSubmissions: 5,
			Type:           models.TaskTypeLink,
		},
	}
	got := BoardButtonLabel(entry)
	if r := []rune(got); len(r) > 80 {
		t.Errorf("label is %d runes, want at most 80", len(r))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated label should end with ellipsis: %q", got)
	}
}

func TestBoardComponents(t *testing.T) {
	owner := snowflake.ID(42)
	entries := make([]BoardEntry, 7)
	for i := range entries {
		entries[i] = BoardEntry{
			Task: &models.Task{
				ID:             int64(i + 1),
				Title:          fmt.Sprintf("Quest %d", i+1),
				Points:         10,
				MaxSubmissions: 5,
				Type:           models.TaskTypeLike,
			},
		}
	}

	components := BoardComponents(entries, owner)
	if len(components) != 2 {
		t.Fatalf("7 quests should span 2 rows, got %d", len(components))
	}

	row, ok := components[0].(discord.ActionRowComponent)
	if !ok {
		t.Fatalf("component is %T, want ActionRowComponent", components[0])
	}
	if len(row.Components()) != 5 {
		t.Errorf("first row has %d buttons, want 5", len(row.Components()))
	}

	btn, ok := row.Components()[0].(discord.ButtonComponent)
	if !ok {
		t.Fatalf("row entry is %T, want ButtonComponent", row.Components()[0])
	}
	if want := "/quest/1/42"; btn.CustomID != want {
		t.Errorf("custom ID = %q, want %q", btn.CustomID, want)
	}
}

func TestTypeEmoji(t *testing.T) {
	tests := []struct {
		taskType string
		want     string
	}{
		{taskType: models.TaskTypeLike, want: "👍"},
		{taskType: models.TaskTypeRetweet, want: "🔁"},
		{taskType: models.TaskTypeLink, want: "🔗"},
		{taskType: "mystery", want: "🎯"},
	}
	for _, tt := range tests {
		if got := TypeEmoji(tt.taskType); got != tt.want {
			t.Errorf("TypeEmoji(%q) = %q, want %q", tt.taskType, got, tt.want)
		}
	}
}
