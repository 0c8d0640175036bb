package admin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/utils"
)

// DashboardHandler shows the live counters plus entry points into every
// admin workflow.
func DashboardHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateErrorEmbed(e, "🚫 Only administrators can open the dashboard.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		pending, err := b.SubmissionRepository.CountPending(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load dashboard counters. Please try again.")
		}
		tasks, err := b.TaskRepository.Count(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load dashboard counters. Please try again.")
		}
		users, err := b.UserRepository.Count(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load dashboard counters. Please try again.")
		}
		bans, err := b.BanRepository.Count(ctx)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load dashboard counters. Please try again.")
		}

		topEarner := "nobody yet"
		if top, err := b.UserRepository.Top(ctx, 1); err == nil && len(top) > 0 {
			topEarner = fmt.Sprintf("<@%s> with %d pts", top[0].DiscordID, top[0].Points)
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🛠️ Quest Admin Dashboard",
				Color: config.InfoColor,
				Fields: []discord.EmbedField{
					{Name: "⏳ Pending Reviews", Value: strconv.Itoa(pending), Inline: boolPtr(true)},
					{Name: "🎯 Quests", Value: strconv.Itoa(tasks), Inline: boolPtr(true)},
					{Name: "👥 Users", Value: strconv.Itoa(users), Inline: boolPtr(true)},
					{Name: "🚫 Banned", Value: strconv.Itoa(bans), Inline: boolPtr(true)},
					{Name: "🏆 Top Earner", Value: topEarner, Inline: boolPtr(true)},
				},
				Timestamp: &now,
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewSuccessButton("➕ Add Quest", "/admin/addquest"),
					discord.NewPrimaryButton("🔍 Review", "/admin/review"),
					discord.NewDangerButton("🚫 Ban User", "/admin/banuser"),
				),
			},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

// ReviewShortcutHandler mirrors /review behind the dashboard button.
func ReviewShortcutHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can review submissions.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		queue, err := b.Review.Queue(ctx)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to load the review queue. Please try again.")
		}
		if len(queue) == 0 {
			return utils.EH.CreateEphemeralSuccess(e, "Nothing to review — the queue is empty! 🎉")
		}

		options := make([]discord.StringSelectMenuOption, 0, len(queue))
		for _, sub := range queue {
			options = append(options, discord.StringSelectMenuOption{
				Label:       fmt.Sprintf("#%d • %s", sub.ID, sub.Task.Title),
				Value:       strconv.FormatInt(sub.ID, 10),
				Description: fmt.Sprintf("by %s", sub.UserID),
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

func boolPtr(v bool) *bool {
	return &v
}
