package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

var ReviewStats = discord.SlashCommandCreate{
	Name:                     "reviewstats",
	Description:              "📊 Live dashboard of pending submissions per quest",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
}

// ReviewStatsHandler posts the pending-count dashboard and keeps it
// fresh with a ticker until the process shuts down. The manual refresh
// button covers the gaps between ticks.
func ReviewStatsHandler(b *questbot.Bot, procCtx context.Context) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdminCommand(e) {
			return utils.EH.CreateErrorEmbed(e, "🚫 Only administrators can view review stats.")
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		embed, err := reviewStatsEmbed(ctx, b)
		cancel()
		if err != nil {
			_, err = e.UpdateInteractionResponse(discord.MessageUpdate{
				Content: ptr("❌ Failed to load review stats. Please try again."),
			})
			return err
		}

		components := []discord.ContainerComponent{
			discord.NewActionRow(discord.NewSecondaryButton("🔄 Refresh", "/reviewstats/refresh")),
		}
		msg, err := e.UpdateInteractionResponse(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{embed},
			Components: &components,
		})
		if err != nil {
			return err
		}

		go autoRefreshStats(b, procCtx, msg.ChannelID, msg.ID)
		return nil
	}
}

// autoRefreshStats re-renders the dashboard message on a fixed cadence.
// It stops when the process context ends or the message goes away.
func autoRefreshStats(b *questbot.Bot, procCtx context.Context, channelID, messageID snowflake.ID) {
	ticker := time.NewTicker(config.ReviewRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-procCtx.Done():
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(procCtx, config.DefaultQueryTimeout)
		embed, err := reviewStatsEmbed(ctx, b)
		cancel()
		if err != nil {
			slog.Error("Failed to refresh review stats",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}

		if _, err := b.Client.Rest().UpdateMessage(channelID, messageID, discord.MessageUpdate{
			Embeds: &[]discord.Embed{embed},
		}); err != nil {
			slog.Warn("Review stats message gone, stopping auto-refresh",
				slog.String("type", "sys"),
				slog.String("message_id", messageID.String()),
				slog.Any("error", err))
			return
		}
	}
}

// ReviewStatsRefreshHandler is the manual refresh button.
func ReviewStatsRefreshHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can view review stats.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		embed, err := reviewStatsEmbed(ctx, b)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to refresh review stats. Please try again.")
		}
		return e.UpdateMessage(discord.MessageUpdate{
			Embeds: &[]discord.Embed{embed},
		})
	}
}

func reviewStatsEmbed(ctx context.Context, b *questbot.Bot) (discord.Embed, error) {
	stats, err := b.Review.DashboardStats(ctx)
	if err != nil {
		return discord.Embed{}, err
	}

	description := "🎉 No pending submissions anywhere!"
	if len(stats) > 0 {
		var sb strings.Builder
		for _, s := range stats {
			fmt.Fprintf(&sb, "**%s**\n`%s` %d pending / %d total\n\n",
				s.Title, quest.StatsBar(s.Pending, s.Total, config.StatsBarLength), s.Pending, s.Total)
		}
		description = strings.TrimRight(sb.String(), "\n")
	}

	now := time.Now()
	return discord.Embed{
		Title:       "📊 Review Dashboard",
		Description: description,
		Color:       config.QueueColor,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Auto-refreshes every %ds", int(config.ReviewRefreshInterval.Seconds())),
		},
		Timestamp: &now,
	}, nil
}
