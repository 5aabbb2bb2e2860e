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

	"github.com/YuriVictoria/KipuBankV2/internal"
	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/handler"
	"github.com/YuriVictoria/KipuBankV2/internal/middleware"
	"github.com/YuriVictoria/KipuBankV2/internal/notify"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"
	"github.com/YuriVictoria/KipuBankV2/internal/service"
	"github.com/YuriVictoria/KipuBankV2/internal/transfer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	folder := "."
	if len(os.Args) > 1 {
		folder = os.Args[1]
	}

	config, err := internal.LoadConfig(folder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load the configuration: %v\n", err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if !config.EnableLogging {
		logger = zerolog.Nop()
	}

	if !middleware.ValidAddress(config.AdminAddress) {
		logger.Fatal().Str("address", config.AdminAddress).Msg("the admin address is not a valid account address")
	}

	db, err := gorm.Open(sqlite.Open(config.DBName), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open the database")
	}
	if err := db.AutoMigrate(
		&entity.BankState{},
		&entity.Account{},
		&entity.RoleGrant{},
		&entity.Event{},
	); err != nil {
		logger.Fatal().Err(err).Msg("could not migrate the schema")
	}

	ledgerRepo := repository.NewSQLiteLedgerRepository(db)
	stateRepo := repository.NewSQLiteBankStateRepository(db)
	roleRepo := repository.NewSQLiteRoleRepository(db)
	eventRepo := repository.NewSQLiteEventRepository(db)

	if err := stateRepo.Init(config.BankCap, config.WithdrawLimit); err != nil {
		logger.Fatal().Err(err).Msg("could not initialize the bank state")
	}

	// Bootstrap grant: the deploying identity gets admin and manager without
	// any check. Every later grant goes through the role service gate.
	admin := entity.Address(config.AdminAddress)
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleManager} {
		if _, err := roleRepo.Grant(uuid.New().String(), role, admin, admin); err != nil {
			logger.Fatal().Err(err).Str("role", string(role)).Msg("could not seed the admin roles")
		}
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if config.EventsBindAddr != "" {
		p, err := notify.NewZMQPublisher(config.EventsBindAddr, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not start the event publisher")
		}
		publisher = p
	}
	defer publisher.Close()

	var gateway transfer.Gateway = transfer.NopGateway{}
	if config.TransferURL != "" {
		timeout := time.Duration(config.TransferTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		gateway = transfer.NewHTTPGateway(config.TransferURL, timeout)
	}

	lock := service.NewCommitLock()
	ledgerService := service.NewLedgerService(lock, ledgerRepo, gateway, publisher, logger)
	configService := service.NewConfigService(lock, stateRepo, roleRepo, publisher, logger)
	roleService := service.NewRoleService(lock, roleRepo, publisher, logger)

	router := handler.NewRouter(
		handler.NewLedgerHandler(ledgerService),
		handler.NewAdminHandler(configService, roleService, eventRepo),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.HTTPServerPort),
		Handler:      router,
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("bank is up")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting off...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
