package quest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/config"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

// MessageSender posts a message to a channel. Satisfied by rest.Rest.
type MessageSender interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// MessageEditor edits an existing message. Satisfied by rest.Rest.
type MessageEditor interface {
	UpdateMessage(channelID snowflake.ID, messageID snowflake.ID, messageUpdate discord.MessageUpdate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Board is the handle to a rendered quest board: the message it lives in
// and the user whose clicks it accepts.
type Board struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	OwnerID   snowflake.ID
}

// BoardEntry is one open quest with its live capacity numbers.
type BoardEntry struct {
	Task      *models.Task
	Done      int
	Remaining int
}

var typeEmojis = map[string]string{
	models.TaskTypeLike:    "👍",
	models.TaskTypeRetweet: "🔁",
	models.TaskTypeLink:    "🔗",
}

// TypeEmoji returns the marker for a task type.
func TypeEmoji(taskType string) string {
	if e, ok := typeEmojis[taskType]; ok {
		return e
	}
	return "🎯"
}

// BoardService renders the capacity-aware list of open quests and keeps
// a displayed board current.
type BoardService struct {
	tasks  repositories.TaskRepository
	subs   repositories.SubmissionRepository
	editor MessageEditor
}

func NewBoardService(tasks repositories.TaskRepository, subs repositories.SubmissionRepository, editor MessageEditor) *BoardService {
	return &BoardService{tasks: tasks, subs: subs, editor: editor}
}

// Render computes the ordered list of open quests, capped at the board
// limit. A task found full here is archived as a side effect and left
// off the board.
func (s *BoardService) Render(ctx context.Context) ([]BoardEntry, error) {
	tasks, err := s.tasks.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tasks: %w", err)
	}

	entries := make([]BoardEntry, 0, len(tasks))
	for _, task := range tasks {
		if len(entries) >= config.BoardCap {
			break
		}
		done, err := s.subs.CountDone(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions for task %d: %w", task.ID, err)
		}
		if done >= task.MaxSubmissions {
			if err := s.tasks.Archive(ctx, task.ID); err != nil {
				slog.Error("Failed to archive full task",
					slog.String("type", "db"),
					slog.Int64("task_id", task.ID),
					slog.Any("error", err))
			}
			continue
		}
		entries = append(entries, BoardEntry{
			Task:      task,
			Done:      done,
			Remaining: task.MaxSubmissions - done,
		})
	}
	return entries, nil
}

// Refresh re-renders the board into its bound message. Refresh is
// best-effort: a storage or transport error is logged and the prior
// display is left as-is.
func (s *BoardService) Refresh(ctx context.Context, board Board) {
	entries, err := s.Render(ctx)
	if err != nil {
		slog.Error("Board refresh failed, keeping prior display",
			slog.String("type", "db"),
			slog.Any("error", err))
		return
	}

	update := discord.MessageUpdate{}
	if len(entries) == 0 {
		empty := "⚠️ No active quests right now."
		update.Content = &empty
		update.Embeds = &[]discord.Embed{}
		update.Components = &[]discord.ContainerComponent{}
	} else {
		embed := BoardEmbed(entries)
		components := BoardComponents(entries, board.OwnerID)
		update.Embeds = &[]discord.Embed{embed}
		update.Components = &components
	}

	if _, err := s.editor.UpdateMessage(board.ChannelID, board.MessageID, update); err != nil {
		slog.Error("Failed to edit board message",
			slog.String("type", "sys"),
			slog.String("channel_id", board.ChannelID.String()),
			slog.String("message_id", board.MessageID.String()),
			slog.Any("error", err))
	}
}

// BoardEmbed builds the board header embed.
func BoardEmbed(entries []BoardEntry) discord.Embed {
	return discord.Embed{
		Title:       "📋 Available Quests",
		Description: "Pick a quest below and submit your proof directly!",
		Color:       config.BoardColor,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("%d open quest(s)", len(entries)),
		},
	}
}

// BoardComponents builds one button per open quest. The custom ID is a
// tagged action descriptor carrying the task and the board owner, so
// the click handler never has to re-derive identity from context.
func BoardComponents(entries []BoardEntry, ownerID snowflake.ID) []discord.ContainerComponent {
	var components []discord.ContainerComponent
	var row []discord.InteractiveComponent
	for _, entry := range entries {
		btn := discord.NewPrimaryButton(
			BoardButtonLabel(entry),
			fmt.Sprintf("/quest/%d/%s", entry.Task.ID, ownerID),
		)
		row = append(row, btn)
		if len(row) == 5 {
			components = append(components, discord.NewActionRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		components = append(components, discord.NewActionRow(row...))
	}
	return components
}

// BoardButtonLabel formats a quest button, truncated to Discord's label
// limit.
func BoardButtonLabel(entry BoardEntry) string {
	star := ""
	if entry.Task.Daily {
		star = " ⭐"
	}
	label := fmt.Sprintf("%s %s (%d pts)%s [%d/%d]",
		TypeEmoji(entry.Task.Type),
		entry.Task.Title,
		entry.Task.Points,
		star,
		entry.Done,
		entry.Task.MaxSubmissions,
	)
	if r := []rune(label); len(r) > 80 {
		label = string(r[:77]) + "..."
	}
	return label
}
