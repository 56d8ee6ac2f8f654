package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-kitchen-sync/internal/config"
	"github.com/MKhiriev/go-kitchen-sync/internal/handler"
	"github.com/MKhiriev/go-kitchen-sync/internal/logger"
	"github.com/MKhiriev/go-kitchen-sync/internal/server"
	"github.com/MKhiriev/go-kitchen-sync/internal/service"
	"github.com/MKhiriev/go-kitchen-sync/internal/store"
	"github.com/MKhiriev/go-kitchen-sync/internal/utils"
	"github.com/MKhiriev/go-kitchen-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(buildInfo)

	log := logger.NewLogger("go-kitchen-sync-server")
	cfg, err := config.GetServerConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	if cfg.App.IssueTokenFor != 0 {
		token, err := utils.GenerateJWTToken(cfg.App.TokenIssuer, cfg.App.IssueTokenFor, cfg.App.TokenDuration, cfg.App.TokenSignKey)
		if err != nil {
			log.Fatal().Err(err).Msg("error issuing token")
		}
		fmt.Println(token.SignedString)
		return
	}

	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion
	}

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion)
	fmt.Printf("Build date: %s\n", info.BuildDate)
	fmt.Printf("Build commit: %s\n", info.BuildCommit)
}
