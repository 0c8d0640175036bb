package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/questcord/questbot/questbot"
	"github.com/questcord/questbot/questbot/commands"
	"github.com/questcord/questbot/questbot/commands/admin"
	"github.com/questcord/questbot/questbot/database"
	"github.com/questcord/questbot/questbot/handlers"
	"github.com/questcord/questbot/questbot/logger"
	"github.com/questcord/questbot/questbot/web"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := questbot.LoadConfig(*path)
	if err != nil {
		slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	slog.Info("Starting QuestBot",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	b := questbot.New(*cfg, version, commit)
	b.DB = db
	b.SetupServices()

	procCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := handler.New()

	h.Command("/quests", handlers.WrapWithLogging("quests", commands.QuestsHandler(b)))
	h.Component("/quest/", handlers.WrapComponentWithLogging("quest-button", commands.QuestButtonHandler(b)))

	h.Command("/profile", handlers.WrapWithLogging("profile", commands.ProfileHandler(b)))
	h.Component("/profile/", handlers.WrapComponentWithLogging("profile-button", commands.ProfileButtonHandler(b)))
	h.Component("/history/", handlers.WrapComponentWithLogging("history", commands.HistoryButtonHandler(b)))
	h.Component("/withdraw/", handlers.WrapComponentWithLogging("withdraw", commands.WithdrawButtonHandler(b)))

	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", commands.LeaderboardHandler(b)))
	h.Command("/help", handlers.WrapWithLogging("help", commands.HelpHandler(b)))

	h.Command("/review", handlers.WrapWithLogging("review", commands.ReviewHandler(b)))
	h.Component("/review-select", handlers.WrapComponentWithLogging("review-select", commands.ReviewSelectHandler(b)))
	h.Component("/review/", handlers.WrapComponentWithLogging("review-verdict", commands.ReviewButtonHandler(b)))
	h.Command("/reviewstats", handlers.WrapWithLogging("reviewstats", commands.ReviewStatsHandler(b, procCtx)))
	h.Component("/reviewstats/refresh", handlers.WrapComponentWithLogging("reviewstats-refresh", commands.ReviewStatsRefreshHandler(b)))

	h.Command("/dashboard", handlers.WrapWithLogging("dashboard", admin.DashboardHandler(b)))
	h.Command("/managequest", handlers.WrapWithLogging("managequest", admin.ManageQuestHandler(b)))
	h.Autocomplete("/managequest", admin.ManageQuestAutocomplete(b))
	h.Command("/givepoints", handlers.WrapWithLogging("givepoints", admin.GivePointsHandler(b)))
	h.Component("/admin/addquest", handlers.WrapComponentWithLogging("admin-addquest", admin.AddQuestButtonHandler(b)))
	h.Component("/admin/review", handlers.WrapComponentWithLogging("admin-review", admin.ReviewShortcutHandler(b)))
	h.Component("/admin/banuser", handlers.WrapComponentWithLogging("admin-banuser", admin.BanButtonHandler(b)))
	h.Component("/admin/quest/", handlers.WrapComponentWithLogging("admin-quest", admin.QuestManageButtonHandler(b)))
	h.Modal("/admin/addquest", handlers.WrapModalWithLogging("admin-addquest", admin.AddQuestModalHandler(b)))
	h.Modal("/admin/editquest/", handlers.WrapModalWithLogging("admin-editquest", admin.EditQuestModalHandler(b)))
	h.Modal("/admin/banuser", handlers.WrapModalWithLogging("admin-banuser", admin.BanModalHandler(b)))

	if err = b.SetupClient(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	keepAlive := web.NewServer(cfg.Web.ListenAddr, version)
	g, groupCtx := errgroup.WithContext(procCtx)
	g.Go(keepAlive.ListenAndServe)
	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return keepAlive.Shutdown(shutdownCtx)
	})

	slog.Info("QuestBot is running. Press CTRL-C to exit.")
	if err := g.Wait(); err != nil {
		slog.Error("Shutdown with error", slog.Any("error", err))
	}
	slog.Info("Shutting down bot...")
}
