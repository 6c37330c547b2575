package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildkeeper/internal/analytics"
	"guildkeeper/internal/bot"
	"guildkeeper/internal/config"
	"guildkeeper/internal/giveaway"
	"guildkeeper/internal/modules/audit"
	"guildkeeper/internal/ops"
	"guildkeeper/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "guildkeeper"
	app.Usage = "Discord community bot with giveaways and moderation"
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Action: run,
			Name:   "run",
			Usage:  "Connect to Discord and serve commands",
		},
		{
			Action: migrate,
			Name:   "migrate",
			Usage:  "Apply database migrations and exit",
		},
		{
			Name:  "giveaways",
			Usage: "Inspect persisted giveaways",
			Subcommands: []*cli.Command{
				{
					Action: listGiveaways,
					Name:   "list",
					Usage:  "Print active and ended giveaways",
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openPersister picks the snapshot backend. The returned client is nil for
// the JSON backend.
func openPersister(ctx context.Context, cfg config.GiveawayConfig) (giveaway.Persister, *redis.Client, error) {
	if cfg.Store == "redis" {
		client, err := giveaway.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return giveaway.NewRedisPersister(client, cfg.RedisPrefix), client, nil
	}
	persister, err := giveaway.NewJSONPersister(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return persister, nil, nil
}

func migrate(cctx *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}
	logger.Info("migrations applied", zap.String("database", cfg.DatabasePath))
	return nil
}

func listGiveaways(cctx *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	persister, client, err := openPersister(cctx.Context, cfg.Giveaway)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}
	snapshot, err := persister.Load(cctx.Context)
	if err != nil {
		return err
	}

	now := time.Now()
	out := cctx.App.Writer
	fmt.Fprintf(out, "active: %d\n", len(snapshot.Active))
	for _, record := range snapshot.Active {
		fmt.Fprintf(out, "  %s  guild=%s  prize=%q  winners=%d  entrants=%d  ends_in=%s\n",
			record.ID, record.GuildID, record.Prize, record.WinnerCount,
			len(snapshot.Participants[record.ID]), giveaway.FormatDuration(record.EndTime.Sub(now)))
	}
	fmt.Fprintf(out, "ended: %d\n", len(snapshot.Ended))
	for _, record := range snapshot.Ended {
		fmt.Fprintf(out, "  %s  guild=%s  prize=%q  ended=%s\n",
			record.ID, record.GuildID, record.Prize, record.EndedAt.Format(time.RFC3339))
	}
	return nil
}

func run(cctx *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	if err := store.CleanupModActions(ctx, cfg.RetentionDays); err != nil {
		logger.Warn("mod log cleanup failed", zap.Error(err))
	}

	persister, redisClient, err := openPersister(ctx, cfg.Giveaway)
	if err != nil {
		logger.Fatal("giveaway store init failed", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry := giveaway.NewRegistry()
	giveawayStore := giveaway.NewStore(persister, registry, cfg.Giveaway.Grace(), logger)
	if err := giveawayStore.Load(ctx); err != nil {
		logger.Fatal("giveaway state load failed", zap.Error(err))
	}
	giveawaySvc := giveaway.NewService(giveawayStore, registry, giveaway.NewStorageArchive(store), giveaway.Options{
		MinDuration:     cfg.Giveaway.MinDuration(),
		PlatformTimeout: cfg.Giveaway.PlatformTimeout(),
	}, logger)
	scheduler := giveaway.NewScheduler(giveawaySvc, cfg.Giveaway.CheckInterval(), cfg.Giveaway.CleanupInterval(), logger)

	auditLogger := audit.NewLogger(store, logger)
	analyticsSvc := analytics.New(store)

	botSvc, err := bot.New(cfg, logger, store, giveawaySvc, auditLogger, analyticsSvc)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}
	if err := botSvc.Start(ctx); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started",
		zap.Int("active_giveaways", len(giveawayStore.ListActive())),
		zap.String("giveaway_store", cfg.Giveaway.Store),
	)

	// The scheduler runs only once the session can reach Discord.
	scheduler.Start(context.WithoutCancel(ctx))

	var server *ops.Server
	if cfg.Health.Enabled {
		server = ops.NewServer(cfg.Health.Addr, ops.NewRouter(store, giveawayStore, time.Now()), logger)
		server.Start()
	}

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}
	scheduler.Stop()
	botSvc.Close()
	giveawayStore.Flush(shutdownCtx)
	return nil
}
