package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"discord-analyzer/models"
)

// stallingSource blocks every history page until its request is canceled.
type stallingSource struct {
	*guildSource
	started chan struct{}
	once    sync.Once
}

func requestContext(opts []discordgo.RequestOption) context.Context {
	cfg := &discordgo.RequestConfig{Request: httptest.NewRequest(http.MethodGet, "/", nil)}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Request.Context()
}

func (s *stallingSource) ChannelMessages(_ string, _ int, _, _, _ string, opts ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	s.once.Do(func() { close(s.started) })
	ctx := requestContext(opts)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStopCancelsScheduledScan(t *testing.T) {
	src := &stallingSource{guildSource: &guildSource{}, started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		Config:   &models.Config{},
		Pipeline: newPipeline(t, src),
		cancel:   cancel,
	}
	b.Config.Bot.GuildID = "1"
	b.Config.Scan.Cron = "@every 1s"

	if err := b.startScheduler(ctx); err != nil {
		t.Fatalf("startScheduler() error = %v", err)
	}
	select {
	case <-src.started:
	case <-time.After(5 * time.Second):
		b.Stop()
		t.Fatal("scheduled scan did not start")
	}

	done := make(chan struct{})
	go func() {
		b.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() is still waiting for the scheduled scan")
	}
}
