package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"discord-analyzer/analyzer"
	"discord-analyzer/bot"
	"discord-analyzer/command"
	"discord-analyzer/config"
	"discord-analyzer/database"
	reportgrpc "discord-analyzer/grpc"
	"discord-analyzer/handlers"
	"discord-analyzer/metrics"
)

const usage = `usage: discord-analyzer <command> [flags]

commands:
  init      write a default config.yaml
  bot       run the Discord bot
  analyze   aggregate a scan file into an analysis file
  serve     serve stored analyses over gRPC
  report    query a running report service
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "init":
		err = runInit(args)
	case "bot":
		err = runBot(args)
	case "analyze":
		err = runAnalyze(args)
	case "serve":
		err = runServe(args)
	case "report":
		err = runReport(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "path of the config file to write")
	fs.Parse(args)

	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s. Set BOT_TOKEN in .env or the file before running the bot.\n", *path)
	return nil
}

func runBot(args []string) error {
	fs := flag.NewFlagSet("bot", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory holding config.yaml, .env and config/")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*dir)
	if err != nil {
		return err
	}
	// 阻塞直到收到终止信号
	bot.Run(cfg, handlers.Register, command.GetCommandDefinitions())
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory holding config.yaml, .env and config/")
	scanPath := fs.String("scan", "", "scan file to read")
	outPath := fs.String("out", "analysis.json", "analysis file to write")
	fs.Parse(args)
	if *scanPath == "" {
		return fmt.Errorf("-scan is required")
	}

	cfg, err := config.LoadConfig(*dir)
	if err != nil {
		return err
	}
	opts, err := config.AnalyzerOptions(cfg)
	if err != nil {
		return err
	}

	scan, err := database.ImportScan(*scanPath)
	if err != nil {
		return err
	}
	start := time.Now()
	a, err := analyzer.Analyze(scan, opts)
	if err != nil {
		return err
	}
	if err := database.ExportAnalysis(*outPath, a); err != nil {
		return err
	}
	log.Printf("Analyzed %d messages of %s in %s, wrote %s", scan.MessageCount(), scan.Server.Name, time.Since(start).Round(time.Millisecond), *outPath)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dir := fs.String("dir", ".", "directory holding config.yaml, .env and config/")
	file := fs.String("analysis", "", "serve this analysis file instead of the store")
	guilds := fs.String("guilds", "", "comma separated guild ids to load from the store")
	fs.Parse(args)

	cfg, err := config.LoadConfig(*dir)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := bot.NewRegistry()
	defaultGuild := cfg.Bot.GuildID
	if *file != "" {
		a, err := database.ImportAnalysis(*file)
		if err != nil {
			return err
		}
		if defaultGuild == "" {
			defaultGuild = "default"
		}
		registry.Set(defaultGuild, a)
	} else {
		ids := splitList(*guilds)
		if len(ids) == 0 && defaultGuild != "" {
			ids = []string{defaultGuild}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no guilds to serve: pass -guilds or set bot.guild_id")
		}
		store, err := database.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer store.Close()

		p := &bot.Pipeline{Store: store, Registry: registry}
		for _, id := range ids {
			ok, err := p.Restore(ctx, id)
			if err != nil {
				return fmt.Errorf("restore guild %s: %w", id, err)
			}
			if !ok {
				log.Printf("Guild %s has no stored analysis", id)
			}
		}
		if defaultGuild == "" {
			defaultGuild = ids[0]
		}
	}

	if srv := metrics.StartServer(cfg.Metrics.Addr); srv != nil {
		defer srv.Close()
	}
	return reportgrpc.Serve(ctx, cfg.GRPC.Addr, reportgrpc.NewServer(registry, defaultGuild))
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	addr := fs.String("addr", "localhost:50051", "report service address")
	guild := fs.String("guild", "", "guild id, empty for the server default")
	subject := fs.String("subject", "user", "user or channel")
	preset := fs.String("preset", "overview", "column preset")
	role := fs.String("role", "", "only list members of this role")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	fs.Parse(args)

	c, err := reportgrpc.NewClient(*addr, *timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	req := &reportgrpc.PivotRequest{GuildID: *guild, Subject: *subject, Preset: *preset}
	if *role != "" {
		req.Roles = []string{*role}
	}
	reply, err := c.Pivot(context.Background(), req)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, reply.Subject+"\t"+strings.Join(reply.Metrics, "\t"))
	for _, row := range reply.Rows {
		fmt.Fprintln(w, row.Subject+"\t"+strings.Join(row.Cells, "\t"))
	}
	return w.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
