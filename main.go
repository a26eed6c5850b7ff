package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cdfund/backend/internal/budget"
	"github.com/cdfund/backend/internal/config"
	v1 "github.com/cdfund/backend/internal/controllers/v1"
	"github.com/cdfund/backend/internal/events"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/payments"
	"github.com/cdfund/backend/internal/projects"
	"github.com/cdfund/backend/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A .env file is optional, env vars can come from anywhere
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// gin uses debug as the default mode, we use release for
	// security reasons
	gin.SetMode(cfg.Server.GinMode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if (cfg.Server.LogFormat == "" && gin.IsDebugging()) || cfg.Server.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	if cfg.UsesPostgres() {
		err = models.ConnectPostgres(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	} else {
		err = os.MkdirAll(filepath.Dir(cfg.Database.Path), os.ModePerm)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		err = models.Connect(cfg.Database.Path + "?_pragma=foreign_keys(1)")
	}
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	publisher := events.Log{Logger: log.Logger}
	store := projects.GormStore{}
	ledger := budget.NewService(models.DB, store, publisher)
	vouchers := payments.NewService(models.DB, ledger, store, publisher)

	r, err := router.New(
		v1.Controller{Budgets: ledger, Payments: vouchers},
		router.Options{
			CorsAllowOrigins: cfg.Server.CorsAllowOrigins,
			EnablePprof:      cfg.Server.EnablePprof,
		},
	)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
