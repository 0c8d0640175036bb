package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/quest"
	"github.com/questcord/questbot/questbot/utils"
)

// AddQuestButtonHandler opens the quest creation modal.
func AddQuestButtonHandler(b *questbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateEphemeralError(e, "🚫 Only administrators can add quests.")
		}
		return e.Modal(questModal("/admin/addquest", "Add a Quest", nil))
	}
}

// questModal builds the quest form, pre-filled from an existing task
// when editing.
func questModal(customID, title string, task *models.Task) discord.ModalCreate {
	titleInput := discord.NewTextInput("title", discord.TextInputStyleShort, "Title").
		WithRequired(true).
		WithMaxLength(80)
	pointsInput := discord.NewTextInput("points", discord.TextInputStyleShort, "Point Reward").
		WithRequired(true).
		WithPlaceholder("e.g. 100")
	maxInput := discord.NewTextInput("max_submissions", discord.TextInputStyleShort, "Max Submissions").
		WithRequired(true).
		WithPlaceholder("e.g. 25")
	typeInput := discord.NewTextInput("type", discord.TextInputStyleShort, "Type (like / rt / link)").
		WithRequired(true).
		WithMaxLength(4)
	linkInput := discord.NewTextInput("link", discord.TextInputStyleShort, "Quest Link (optional)").
		WithRequired(false)

	if task != nil {
		titleInput = titleInput.WithValue(task.Title)
		pointsInput = pointsInput.WithValue(strconv.FormatInt(task.Points, 10))
		maxInput = maxInput.WithValue(strconv.Itoa(task.MaxSubmissions))
		typeInput = typeInput.WithValue(task.Type)
		if task.Link != "" {
			linkInput = linkInput.WithValue(task.Link)
		}
	}

	return discord.ModalCreate{
		CustomID: customID,
		Title:    title,
		Components: []discord.ContainerComponent{
			discord.NewActionRow(titleInput),
			discord.NewActionRow(pointsInput),
			discord.NewActionRow(maxInput),
			discord.NewActionRow(typeInput),
			discord.NewActionRow(linkInput),
		},
	}
}

// parseQuestForm validates the shared quest form fields.
func parseQuestForm(e *handler.ModalEvent) (*models.Task, string) {
	title := strings.TrimSpace(e.Data.Text("title"))
	if title == "" {
		return nil, "Title cannot be empty."
	}

	points, err := strconv.ParseInt(strings.TrimSpace(e.Data.Text("points")), 10, 64)
	if err != nil || points <= 0 {
		return nil, "Point reward must be a positive number."
	}

	maxSubs, err := strconv.Atoi(strings.TrimSpace(e.Data.Text("max_submissions")))
	if err != nil || maxSubs <= 0 {
		return nil, "Max submissions must be a positive number."
	}

	taskType := strings.ToLower(strings.TrimSpace(e.Data.Text("type")))
	if !models.ValidTaskType(taskType) {
		return nil, "Type must be one of: like, rt, link."
	}

	link, _ := e.Data.OptText("link")
	link = strings.TrimSpace(link)
	if link != "" && !strings.HasPrefix(link, "http") {
		return nil, "The quest link must start with http."
	}

	return &models.Task{
		Title:          title,
		Points:         points,
		MaxSubmissions: maxSubs,
		Type:           taskType,
		Link:           link,
	}, ""
}

// AddQuestModalHandler validates the form, creates the quest and
// announces the drop.
func AddQuestModalHandler(b *questbot.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		if !isAdmin(e.Member()) {
			return utils.EH.CreateModalError(e, "🚫 Only administrators can add quests.")
		}

		task, problem := parseQuestForm(e)
		if problem != "" {
			return utils.EH.CreateModalError(e, "❌ "+problem)
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.TaskRepository.Create(ctx, task); err != nil {
			slog.Error("Failed to create task",
				slog.String("type", "db"),
				slog.Any("error", err))
			return utils.EH.CreateModalError(e, "Failed to create the quest. Please try again.")
		}

		announceQuest(ctx, b, task)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "✅ Quest Created",
				Description: fmt.Sprintf("%s **%s** — %d points, %d slots.",
					quest.TypeEmoji(task.Type), task.Title, task.Points, task.MaxSubmissions),
				Color: config.SuccessColor,
			}},
			Flags: discord.MessageFlagEphemeral,
		})
	}
}

// announceQuest posts the new-quest drop and pins the announcement
// message ID back onto the task so edits can find it.
func announceQuest(ctx context.Context, b *questbot.Bot, task *models.Task) {
	if b.Cfg.Channels.Announcements == 0 {
		return
	}

	create := discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "🔥 New Quest Dropped!",
			Description: fmt.Sprintf("%s **%s**\nReward: **%d points** • Slots: **%d**\nRun `/quests` to grab it!",
				quest.TypeEmoji(task.Type), task.Title, task.Points, task.MaxSubmissions),
			Color: config.GoldColor,
		}},
	}
	if task.Link != "" {
		create.Components = []discord.ContainerComponent{
			discord.NewActionRow(discord.NewLinkButton("🔗 Open Quest", task.Link)),
		}
	}

	msg, err := b.Client.Rest().CreateMessage(b.Cfg.Channels.Announcements, create)
	if err != nil {
		slog.Error("Failed to announce quest",
			slog.String("type", "sys"),
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
		return
	}

	if err := b.TaskRepository.SetAnnouncementRef(ctx, task.ID, msg.ID.String()); err != nil {
		slog.Error("Failed to store announcement ref",
			slog.String("type", "db"),
			slog.Int64("task_id", task.ID),
			slog.Any("error", err))
	}
}
