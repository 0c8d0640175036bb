package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/quest"
)

func TestDenyTextNamesQuestOnCooldown(t *testing.T) {
	deny := &quest.DenyError{Reason: quest.DenyCooldown, Remaining: 3 * time.Second}

	// A 3s remainder picks the phrasing that names the quest.
	msg := denyText(discord.User{ID: 1}, deny, "Like the post")
	if !strings.Contains(msg, "Like the post") {
		t.Errorf("cooldown denial does not name the quest: %q", msg)
	}
	if strings.Contains(msg, "this quest") {
		t.Errorf("cooldown denial fell back to the placeholder: %q", msg)
	}
}

func TestDenyTextDuplicateByStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{models.SubmissionPending, "waiting for review"},
		{models.SubmissionApproved, "already completed"},
		{models.SubmissionRejected, "rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			deny := &quest.DenyError{Reason: quest.DenyDuplicate, Status: tt.status}
			msg := denyText(discord.User{ID: 1}, deny, "Like the post")
			if !strings.Contains(msg, tt.want) {
				t.Errorf("denyText(%s) = %q, want mention of %q", tt.status, msg, tt.want)
			}
		})
	}
}
