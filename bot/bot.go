package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"

	"discord-analyzer/config"
	"discord-analyzer/database"
	reportgrpc "discord-analyzer/grpc"
	"discord-analyzer/metrics"
	"discord-analyzer/models"
	"discord-analyzer/scanner"
	"discord-analyzer/utils"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session  *discordgo.Session
	Config   *models.Config
	Store    database.Store
	Registry *Registry
	Pipeline *Pipeline
	Auth     *utils.Auth

	commands []*discordgo.ApplicationCommand
	cron     *cron.Cron
	metrics  *http.Server
	cancel   context.CancelFunc
}

// NewBot creates the session and the scan pipeline from cfg.
func NewBot(ctx context.Context, cfg *models.Config) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("no bot token provided")
	}
	opts, err := config.AnalyzerOptions(cfg)
	if err != nil {
		return nil, err
	}

	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	store, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	registry := NewRegistry()
	return &Bot{
		Session:  dg,
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Auth:     utils.NewAuth(cfg.Commands),
		Pipeline: &Pipeline{
			Store: store,
			Scanner: scanner.New(dg, scanner.Options{
				Channels:          cfg.Scan.Channels,
				PageSize:          cfg.Scan.PageSize,
				RequestsPerSecond: cfg.Scan.RequestsPerSecond,
			}),
			Options:   opts,
			Registry:  registry,
			ExportDir: cfg.Storage.ExportDir,
		},
	}, nil
}

// Guilds returns the guilds the bot analyzes: the configured one, or every
// guild the session is in.
func (b *Bot) Guilds() []string {
	if b.Config.Bot.GuildID != "" {
		return []string{b.Config.Bot.GuildID}
	}
	var ids []string
	if b.Session.State != nil {
		for _, g := range b.Session.State.Guilds {
			ids = append(ids, g.ID)
		}
	}
	return ids
}

// Start opens the bot's session, registers handlers and slash commands and
// starts the scheduler and the report listeners.
func (b *Bot) Start(registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) error {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	registerHandlers(b)
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session, b.Config.Bot.AdminChannelID)

	for _, guildID := range b.Guilds() {
		if ok, err := b.Pipeline.Restore(ctx, guildID); err != nil {
			log.Printf("Could not restore analysis of guild %s: %v", guildID, err)
		} else if ok {
			log.Printf("Restored analysis of guild %s", guildID)
		}
	}

	// Register slash commands
	for _, cmd := range commands {
		created, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.Config.Bot.GuildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Name, err)
			continue
		}
		b.commands = append(b.commands, created)
	}

	if err := b.startScheduler(ctx); err != nil {
		return err
	}

	b.metrics = metrics.StartServer(b.Config.Metrics.Addr)
	if addr := b.Config.GRPC.Addr; addr != "" {
		srv := reportgrpc.NewServer(b.Registry, b.Config.Bot.GuildID)
		go func() {
			if err := reportgrpc.Serve(ctx, addr, srv); err != nil {
				log.Printf("Report service stopped: %v", err)
			}
		}()
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	// 先取消，正在运行的定时扫描才能退出
	if b.cancel != nil {
		b.cancel()
	}
	b.stopScheduler()
	if b.metrics != nil {
		b.metrics.Close()
	}
	for _, cmd := range b.commands {
		if err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.Config.Bot.GuildID, cmd.ID); err != nil {
			log.Printf("Cannot delete '%v' command: %v", cmd.Name, err)
		}
	}
	if b.Session != nil {
		b.Session.Close()
	}
	if b.Store != nil {
		b.Store.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run(cfg *models.Config, registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) {
	bot, err := NewBot(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Start(registerHandlers, commands); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
