package bot

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// startScheduler runs an incremental scan of every guild on scan.cron and,
// when configured, once at startup.
func (b *Bot) startScheduler(ctx context.Context) error {
	log.Println("Initializing scheduler...")
	schedule := b.Config.Scan.Cron
	if schedule == "" {
		schedule = "@daily"
	}

	b.cron = cron.New()
	if _, err := b.cron.AddFunc(schedule, func() {
		log.Println("Running scheduled scan...")
		b.scanAll(ctx, false)
	}); err != nil {
		return fmt.Errorf("could not set up cron job %q: %w", schedule, err)
	}
	b.cron.Start()
	log.Printf("Cron job scheduled (%s).", schedule)

	if b.Config.Bot.ScanAtStartup {
		go func() {
			log.Println("Performing initial scan on startup...")
			b.scanAll(ctx, false)
		}()
	} else {
		log.Println("Skipping initial scan on startup as per configuration.")
	}
	return nil
}

func (b *Bot) scanAll(ctx context.Context, full bool) {
	for _, guildID := range b.Guilds() {
		if _, err := b.Pipeline.Run(ctx, guildID, full); err != nil {
			log.Printf("Scan of guild %s: %v", guildID, err)
		}
	}
}

// stopScheduler stops the cron jobs.
func (b *Bot) stopScheduler() {
	if b.cron != nil {
		<-b.cron.Stop().Done()
		log.Println("Scheduler stopped.")
	}
}
