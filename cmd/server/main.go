package main

import (
	"os"
	"os/signal"
	"syscall"

	"church-attendance/internal/api"
	"church-attendance/internal/config"
	"church-attendance/internal/database"
	"church-attendance/internal/handler"
	"church-attendance/internal/mail"
	"church-attendance/internal/repository"
	"church-attendance/internal/seed"
	"church-attendance/internal/service"
	"church-attendance/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetAppConfig()
	logrus.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create user repository")
	}
	peopleRepo, err := repository.NewGormPeopleRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create people repository")
	}
	gatheringRepo, err := repository.NewGormGatheringRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create gathering repository")
	}
	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create attendance repository")
	}
	invitationRepo, err := repository.NewGormInvitationRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create invitation repository")
	}

	var mailer service.InvitationMailer
	if cfg.MailEnabled() {
		mailer = mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		logrus.Infof("Invitation mail enabled via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}

	userService := service.NewUserService(userRepo)
	peopleService := service.NewPeopleService(peopleRepo)
	gatheringService := service.NewGatheringService(gatheringRepo, cfg.Location, cfg.HorizonMonths)
	calendarService := service.NewCalendarService(gatheringService)
	attendanceService := service.NewAttendanceService(gatheringService, attendanceRepo)
	reportService := service.NewReportService(gatheringService, attendanceService)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, mailer, cfg.AppURL, cfg.InvitationTTL)

	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logrus.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	if cfg.SeedFile != "" {
		file, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load seed file")
		}
		if _, err := seed.NewSeeder(peopleService, gatheringService).Apply(file); err != nil {
			logrus.WithError(err).Fatal("Failed to apply seed file")
		}
	}

	server := api.NewServer(api.Services{
		Gatherings:  gatheringService,
		Calendar:    calendarService,
		People:      peopleService,
		Attendance:  attendanceService,
		Reports:     reportService,
		Users:       userService,
		Invitations: invitationService,
	}, api.Options{
		APIKey:   cfg.APIKey,
		Location: cfg.Location,
	})

	go func() {
		if err := server.Listen(cfg.HTTPAddr); err != nil {
			logrus.WithError(err).Fatal("HTTP server stopped")
		}
	}()

	var (
		client *telegram.Client
		digest *service.DigestService
	)
	if cfg.BotEnabled() {
		client, err = telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
		if err != nil {
			logrus.Fatal("Failed to create Telegram client:", err)
		}
		logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

		digest = service.NewDigestService(reportService, userService, client, cfg.Location)
		if err := digest.Start(cfg.DigestCron); err != nil {
			logrus.WithError(err).Fatal("Failed to schedule digest")
		}

		botHandler := handler.NewHandler(
			client,
			userService,
			gatheringService,
			reportService,
			invitationService,
			digest,
		)
		go botHandler.HandleUpdates(client.Updates())
		logrus.Info("Bot started")
	} else {
		logrus.Info("TELEGRAM_BOT_TOKEN is empty, bot and digest disabled")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logrus.Info("Server started. Press Ctrl+C to stop.")
	<-stop

	if client != nil {
		client.Stop()
	}
	if digest != nil {
		digest.Stop()
	}
	if err := server.Shutdown(); err != nil {
		logrus.Infof("Error stopping HTTP server: %v", err)
	}
	invitationService.Wait()

	if err := database.Close(db); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Server stopped gracefully")
}
