package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/utils"
)

var Review = discord.SlashCommandCreate{
	Name:                     "review",
	Description:              "🔍 Review pending quest submissions",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
}

// ReviewHandler opens the review queue: a select menu over the oldest
// pending submissions.
func ReviewHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdminCommand(e) {
			return utils.EH.CreateErrorEmbed(e, "🚫 Only administrators can review submissions.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		queue, err := b.Review.Queue(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the review queue. Please try again.")
		}
		if len(queue) == 0 {
			return utils.EH.CreateSuccessEmbed(e, "🎉 Nothing to review — the queue is empty!")
		}

		options := make([]discord.StringSelectMenuOption, 0, len(queue))
		for _, sub := range queue {
			options = append(options, discord.StringSelectMenuOption{
				Label:       truncate(fmt.Sprintf("#%d • %s", sub.ID, sub.Task.Title), 100),
				Value:       strconv.FormatInt(sub.ID, 10),
				Description: truncate(fmt.Sprintf("by %s • %s", sub.UserID, sub.CreatedAt.Format("Jan 02 15:04")), 100),
			})
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🔍 Pending Submissions",
				Description: fmt.Sprintf("**%d** submission(s) waiting. Pick one to review.", len(queue)),
				Color:       config.ReviewColor,
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewStringSelectMenu("/review-select", "Select a submission", options...),
				),
			},
		})
	}
}

// ReviewSelectHandler loads the chosen submission and swaps the queue
// message for the detail view. A submission reviewed in the meantime is
// a specific denial, not an error.
func ReviewSelectHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can review submissions.")
		}
		data, ok := e.Data.(discord.StringSelectMenuInteractionData)
		if !ok || len(data.Values) == 0 {
			return utils.EH.CreateEphemeralError(e, "Invalid selection.")
		}
		id, err := strconv.ParseInt(data.Values[0], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Invalid selection.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		sub, err := b.Review.Select(ctx, id)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotPending):
				return utils.EH.CreateEphemeralError(e, "⚠️ Another admin already handled this one. Run /review again.")
			case errors.Is(err, repositories.ErrSubmissionNotFound):
				return utils.EH.CreateEphemeralError(e, "This submission no longer exists.")
			default:
				return utils.EH.CreateEphemeralError(e, "Failed to load the submission. Please try again.")
			}
		}

		components := []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewSuccessButton("✅ Approve", fmt.Sprintf("/review/approve/%d", sub.ID)),
				discord.NewDangerButton("❌ Reject", fmt.Sprintf("/review/reject/%d", sub.ID)),
			),
		}
		return e.UpdateMessage(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{reviewDetailEmbed(sub)},
			Components: &components,
		})
	}
}

func reviewDetailEmbed(sub *models.Submission) discord.Embed {
	return discord.Embed{
		Title: fmt.Sprintf("🔍 Submission #%d", sub.ID),
		Color: config.ReviewColor,
		Fields: []discord.EmbedField{
			{Name: "Quest", Value: sub.Task.Title, Inline: ptr(true)},
			{Name: "Reward", Value: fmt.Sprintf("%d points", sub.Task.Points), Inline: ptr(true)},
			{Name: "Submitter", Value: fmt.Sprintf("<@%s>", sub.UserID), Inline: ptr(true)},
			{Name: "Proof", Value: sub.Proof, Inline: ptr(false)},
			{Name: "Submitted", Value: sub.CreatedAt.Format("Jan 02, 2006 15:04"), Inline: ptr(false)},
		},
	}
}

// ReviewButtonHandler applies the verdict. Both verdicts are idempotent:
// a second click lands on a non-pending submission and is denied without
// touching the ledger.
func ReviewButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can review submissions.")
		}
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		parts := strings.Split(strings.TrimPrefix(data.CustomID(), "/review/"), "/")
		if len(parts) != 2 {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		switch parts[0] {
		case "approve":
			sub, crossed, err := b.Review.Approve(ctx, id)
			if err != nil {
				return reviewVerdictError(e, err)
			}
			description := fmt.Sprintf("**%s** by <@%s> approved.\n**+%d points** credited.",
				sub.Task.Title, sub.UserID, sub.Task.Points)
			for _, m := range crossed {
				description += fmt.Sprintf("\n🏅 Milestone crossed: **%d points**!", m)
			}
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Title:       fmt.Sprintf("✅ Submission #%d Approved", sub.ID),
					Description: description,
					Color:       config.SuccessColor,
				}},
				Components: &[]discord.ContainerComponent{},
			})
		case "reject":
			sub, err := b.Review.Reject(ctx, id)
			if err != nil {
				return reviewVerdictError(e, err)
			}
			return e.UpdateMessage(discord.MessageUpdate{
				Embeds: &[]discord.Embed{{
					Title: fmt.Sprintf("❌ Submission #%d Rejected", sub.ID),
					Description: fmt.Sprintf("**%s** by <@%s> rejected. No points credited.",
						sub.Task.Title, sub.UserID),
					Color: config.ErrorColor,
				}},
				Components: &[]discord.ContainerComponent{},
			})
		default:
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
	}
}

func reviewVerdictError(e *handler.ComponentEvent, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotPending):
		return utils.EH.CreateEphemeralError(e, "⚠️ This submission was already reviewed.")
	case errors.Is(err, repositories.ErrSubmissionNotFound):
		return utils.EH.CreateEphemeralError(e, "This submission no longer exists.")
	default:
		return utils.EH.CreateEphemeralError(e, "Failed to apply the verdict. Please try again.")
	}
}

func isAdminCommand(e *handler.CommandEvent) bool {
	return isAdmin(e.Member())
}

func truncate(s string, max int) string {
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
