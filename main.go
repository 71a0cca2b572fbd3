package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoroom/internal/config"
	"autoroom/internal/handler/api"
	"autoroom/internal/handler/auth"
	"autoroom/internal/handler/event"
	"autoroom/internal/infrastructure/platform"
	"autoroom/internal/infrastructure/repository"
	"autoroom/internal/logger"
	"autoroom/internal/usecase"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

const serviceName = "autoroom"

func main() {
	flags := pflag.NewFlagSet(serviceName, pflag.ExitOnError)
	configPath := flags.String("config", config.ConfigPath, "path to the YAML config file")
	mintToken := flags.String("mint-token", "", "print an operator API token for the given operator and exit")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tm := auth.NewJWTTokenManager(cfg.API.JWTSecret, cfg.API.TokenTTL)
	if *mintToken != "" {
		token, err := tm.Generate(*mintToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mint token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, tm, log); err != nil {
		log.Fatal("Service stopped", zap.Error(err))
	}
}

func run(cfg config.Config, tm auth.TokenManager, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	gateway := platform.NewDiscordGateway(session)
	templateRepo := repository.NewTemplatePostgresRepo(db)
	roomRepo := repository.NewMonitoredRoomPostgresRepo(db)
	profileRepo := repository.NewProfilePostgresRepo(db)
	stagingRepo := repository.NewGuestStagingRepo()

	permissions := usecase.NewPermissionUC(gateway, roomRepo, stagingRepo, log.Named("permission"))
	provision := usecase.NewProvisionUC(gateway, templateRepo, roomRepo, permissions, log.Named("provision"))
	reaper := usecase.NewReaperUC(gateway, roomRepo, stagingRepo, cfg.EmptyGracePeriod, log.Named("reaper"))
	reconciler := usecase.NewReconcileUC(gateway, templateRepo, roomRepo, stagingRepo, cfg.Reconcile.Concurrency, log.Named("reconcile"))
	profiles := usecase.NewProfileUC(gateway, templateRepo, profileRepo, stagingRepo, permissions, log.Named("profile"))

	event.NewEventHandler(provision, reaper, permissions, reconciler, roomRepo, log.Named("event")).Register(ctx, session)

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer session.Close()
	log.Info("Discord session opened")

	if cfg.Reconcile.Interval > 0 {
		go reconciler.RunPeriodic(ctx, cfg.Reconcile.Interval)
	}

	var srv *http.Server
	if cfg.API.Addr != "" {
		router := api.NewRouter(tm, log.Named("api"),
			api.NewRoomHandler(roomRepo, reconciler, log.Named("api")),
			api.NewProfileHandler(profiles, log.Named("api")),
			api.NewTemplateHandler(templateRepo, log.Named("api")),
		)
		srv = &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Info("Operator API started", zap.String("addr", cfg.API.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Operator API error", zap.Error(err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Operator API shutdown", zap.Error(err))
		}
	}
	return nil
}
