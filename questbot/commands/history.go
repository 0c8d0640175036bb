package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

// HistoryButtonHandler pages a user's reviewed submissions. Each click
// rebuilds one page from storage, so the pager carries no state beyond
// the custom ID.
func HistoryButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		parts := strings.Split(strings.TrimPrefix(data.CustomID(), "/history/"), "/")
		if len(parts) != 2 {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
		userID, err := snowflake.Parse(parts[0])
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
		page, err := strconv.Atoi(parts[1])
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		view, err := b.History.Page(ctx, userID.String(), page)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to load the history page. Please try again.")
		}

		components := historyComponents(userID, view)
		return e.UpdateMessage(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{historyEmbed(view)},
			Components: &components,
		})
	}
}

func historyEmbed(view quest.HistoryPage) discord.Embed {
	description := "No reviewed submissions yet."
	if len(view.Entries) > 0 {
		lines := make([]string, 0, len(view.Entries))
		for _, sub := range view.Entries {
			lines = append(lines, quest.FormatHistoryEntry(sub))
		}
		description = strings.Join(lines, "\n\n")
	}
	return discord.Embed{
		Title:       "📜 Submission History",
		Description: description,
		Color:       config.HistoryColor,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", view.Page+1, view.TotalPages),
		},
	}
}

func historyComponents(userID snowflake.ID, view quest.HistoryPage) []discord.ContainerComponent {
	prev := discord.NewSecondaryButton("◀ Prev", fmt.Sprintf("/history/%s/%d", userID, view.Page-1))
	if !view.HasPrev() {
		prev = prev.AsDisabled()
	}
	next := discord.NewSecondaryButton("Next ▶", fmt.Sprintf("/history/%s/%d", userID, view.Page+1))
	if !view.HasNext() {
		next = next.AsDisabled()
	}
	back := discord.NewPrimaryButton("👤 Profile", fmt.Sprintf("/profile/%s", userID))
	return []discord.ContainerComponent{discord.NewActionRow(prev, next, back)}
}
