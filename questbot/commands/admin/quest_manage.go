package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
	"github.com/sahilm/fuzzy"
)

// taskTitles implements fuzzy.Source over the active task list.
type taskTitles []*models.Task

func (t taskTitles) String(i int) string { return t[i].Title }
func (t taskTitles) Len() int            { return len(t) }

// ManageQuestAutocomplete fuzzy-matches quest titles as the admin types.
func ManageQuestAutocomplete(b *questbot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "quest" {
			return nil
		}

		searchTerm := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			searchTerm = strings.TrimSpace(s)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		tasks, err := b.TaskRepository.GetActive(ctx)
		if err != nil {
			slog.Error("Failed to load tasks for autocomplete",
				slog.String("type", "db"),
				slog.Any("error", err))
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		matched := tasks
		if searchTerm != "" {
			matched = matched[:0:0]
			for _, m := range fuzzy.FindFrom(searchTerm, taskTitles(tasks)) {
				matched = append(matched, tasks[m.Index])
			}
		}

		choices := make([]discord.AutocompleteChoice, 0, min(len(matched), 25))
		for _, task := range matched {
			if len(choices) == 25 {
				break
			}
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  fmt.Sprintf("%s %s (%d pts)", quest.TypeEmoji(task.Type), task.Title, task.Points),
				Value: strconv.FormatInt(task.ID, 10),
			})
		}
		return e.AutocompleteResult(choices)
	}
}

// ManageQuestHandler shows the management view for one quest.
func ManageQuestHandler(b *questbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateErrorEmbed(e, "🚫 Only administrators can manage quests.")
		}

		taskID, err := strconv.ParseInt(e.SlashCommandInteractionData().String("quest"), 10, 64)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Pick a quest from the suggestions.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		task, err := b.TaskRepository.Get(ctx, taskID)
		if err != nil {
			if errors.Is(err, repositories.ErrTaskNotFound) {
				return utils.EH.CreateErrorEmbed(e, "That quest no longer exists.")
			}
			return utils.EH.CreateErrorEmbed(e, "Failed to load the quest. Please try again.")
		}

		done, err := b.SubmissionRepository.CountDone(ctx, task.ID)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to load the quest. Please try again.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds:     []discord.Embed{manageEmbed(task, done)},
			Components: manageComponents(task),
			Flags:      discord.MessageFlagEphemeral,
		})
	}
}

func manageEmbed(task *models.Task, done int) discord.Embed {
	status := "open"
	if task.Archived {
		status = "archived"
	}
	return discord.Embed{
		Title: fmt.Sprintf("🗂️ %s %s", quest.TypeEmoji(task.Type), task.Title),
		Color: config.InfoColor,
		Fields: []discord.EmbedField{
			{Name: "Reward", Value: fmt.Sprintf("%d points", task.Points), Inline: boolPtr(true)},
			{Name: "Slots", Value: fmt.Sprintf("%d/%d", done, task.MaxSubmissions), Inline: boolPtr(true)},
			{Name: "Status", Value: status, Inline: boolPtr(true)},
		},
	}
}

func manageComponents(task *models.Task) []discord.ContainerComponent {
	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewPrimaryButton("✏️ Edit", fmt.Sprintf("/admin/quest/%d/edit", task.ID)),
			discord.NewSecondaryButton("📦 Archive", fmt.Sprintf("/admin/quest/%d/archive", task.ID)),
			discord.NewDangerButton("🗑️ Remove", fmt.Sprintf("/admin/quest/%d/remove", task.ID)),
		),
	}
}

// QuestManageButtonHandler routes the per-quest edit/archive/remove
// buttons.
func QuestManageButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can manage quests.")
		}
		data, ok := e.Data.(discord.ButtonInteractionData)
		if !ok {
			return fmt.Errorf("invalid interaction type")
		}

		parts := strings.Split(strings.TrimPrefix(data.CustomID(), "/admin/quest/"), "/")
		if len(parts) != 2 {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
		taskID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		switch parts[1] {
		case "edit":
			task, err := b.TaskRepository.Get(ctx, taskID)
			if err != nil {
				return utils.EH.CreateEphemeralError(e, "That quest no longer exists.")
			}
			return e.Modal(questModal(fmt.Sprintf("/admin/editquest/%d", taskID), "Edit Quest", task))

		case "archive":
			if err := b.TaskRepository.Archive(ctx, taskID); err != nil {
				return utils.EH.CreateEphemeralError(e, "Failed to archive the quest. Please try again.")
			}
			return utils.EH.CreateEphemeralSuccess(e, "Quest archived. It no longer appears on boards.")

		case "remove":
			if err := b.TaskRepository.Delete(ctx, taskID); err != nil {
				return utils.EH.CreateEphemeralError(e, "Failed to remove the quest. Please try again.")
			}
			return utils.EH.CreateEphemeralSuccess(e, "Quest removed along with its submissions.")

		default:
			return utils.EH.CreateEphemeralError(e, "This button is no longer valid.")
		}
	}
}

// EditQuestModalHandler applies the edited form to an existing quest.
func EditQuestModalHandler(b *questbot.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateModalError(e, "🚫 Only administrators can edit quests.")
		}

		taskID, err := strconv.ParseInt(strings.TrimPrefix(e.Data.CustomID, "/admin/editquest/"), 10, 64)
		if err != nil {
			return utils.EH.CreateModalError(e, "This form is no longer valid.")
		}

		form, problem := parseQuestForm(e)
		if problem != "" {
			return utils.EH.CreateModalError(e, "❌ "+problem)
		}
		form.ID = taskID

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.TaskRepository.Update(ctx, form); err != nil {
			slog.Error("Failed to update task",
				slog.String("type", "db"),
				slog.Int64("task_id", taskID),
				slog.Any("error", err))
			return utils.EH.CreateModalError(e, "Failed to update the quest. Please try again.")
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "✅ Quest Updated",
				Description: fmt.Sprintf("%s **%s** — %d points, %d slots.",
					quest.TypeEmoji(form.Type), form.Title, form.Points, form.MaxSubmissions),
				Color: config.SuccessColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}
