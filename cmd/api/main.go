// Command api serves the Huahuacuna foundation HTTP API.
//
// @title                       Fundación Huahuacuna API
// @version                     1.0
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/huahuacuna/fundacion-api/internal/api"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/core/service"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/config"
	redisstore "github.com/huahuacuna/fundacion-api/internal/infrastructure/db/redis"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/http/handlers"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/mail"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/queue"
	"github.com/huahuacuna/fundacion-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "fundacion-api",
		Env:     cfg.Env,
	})

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()
	log.Info().Str("driver", st.name).Msg("store ready")

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	mailer := newMailer(cfg, log)
	dispatcher := queue.NewDispatcher(cfg.Notifications.Workers, mailer, log)
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workersCtx)

	accounts := service.NewAccountService(
		st.users,
		redisstore.NewResetCodeStore(rdb),
		redisstore.NewTokenRevoker(rdb),
		mailer,
		cfg.JWTSecret,
		cfg.TokenTTL,
		log,
	)
	e := api.NewRouter(api.Services{
		Accounts:     accounts,
		Users:        service.NewUserService(st.users, mailer, log),
		Children:     service.NewChildService(st.children, st.tx, log),
		Sponsorships: service.NewSponsorshipService(st.sponsorships, st.tx, dispatcher, log),
		Donations:    service.NewDonationService(st.donations, log),
		Logbook:      service.NewLogbookService(st.logbook, st.children, st.sponsorships, log),
		Events:       service.NewEventService(st.events, st.registrations, dispatcher, log),
		Projects:     service.NewProjectService(st.projects, st.volunteers, log),
	}, api.Options{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		Checks: map[string]handlers.Check{
			st.name: st.check,
			"redis": handlers.RedisCheck(rdb),
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("API listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Close()
	log.Info().Msg("server stopped")
	return err
}

func newMailer(cfg *config.Config, log zerolog.Logger) ports.Mailer {
	if cfg.Mail.Provider == config.MailMailgun {
		return mail.NewMailgunSender(mail.Config{
			Domain:  cfg.Mail.Domain,
			APIKey:  cfg.Mail.APIKey,
			APIBase: cfg.Mail.APIBase,
			From:    cfg.Mail.From,
		}, log)
	}
	return mail.NewLogSender(log)
}
