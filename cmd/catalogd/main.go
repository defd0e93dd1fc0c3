package main

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Alen-Aazim/Yesgee/internal/admin"
	"github.com/Alen-Aazim/Yesgee/internal/catalog"
	"github.com/Alen-Aazim/Yesgee/internal/config"
	"github.com/Alen-Aazim/Yesgee/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	if err := admin.ParsePasswordHash(cfg.AdminPasswordHash); err != nil {
		log.Fatal("bad admin password hash", zap.Error(err))
	}

	store, err := newStore(cfg, log)
	if err != nil {
		log.Fatal("catalog store init", zap.Error(err))
	}

	console := &admin.Server{
		Store:        store,
		Log:          log,
		Sessions:     admin.NewSessionMaker(cfg.SessionSecret),
		PasswordHash: cfg.AdminPasswordHash,
	}

	api := &catalog.Server{Store: store, Log: log}

	h := catalog.NewHandler(api, console.Routes(), catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newStore(cfg config.Config, log *zap.Logger) (catalog.Store, error) {
	ctx := context.Background()

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s := catalog.NewPostgresStore(db)
		if err := s.Initialize(ctx); err != nil {
			return nil, err
		}
		log.Info("using postgres store")
		return s, nil
	}

	s := catalog.NewFileStore(cfg.DBFile)
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	log.Info("using file store", zap.String("path", cfg.DBFile))
	return s, nil
}
