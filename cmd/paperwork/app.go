package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/paperwork/paperwork/internal/config"
	"github.com/paperwork/paperwork/internal/domain/docmodel"
	"github.com/paperwork/paperwork/internal/domain/doctorletter"
	"github.com/paperwork/paperwork/internal/domain/export"
	"github.com/paperwork/paperwork/internal/domain/notfallpass"
	"github.com/paperwork/paperwork/internal/domain/offlabel"
	"github.com/paperwork/paperwork/internal/formpacks"
	"github.com/paperwork/paperwork/internal/platform/docx"
	"github.com/paperwork/paperwork/internal/platform/i18n"
	"github.com/paperwork/paperwork/internal/platform/store"
	"github.com/paperwork/paperwork/internal/platform/telemetry"
)

// newLogger builds the root logger: JSON by default, console output in
// development.
func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// app holds the wired components a command needs.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	telemetry *telemetry.Provider
	assets    fs.FS
	records   store.Store
	exporter  *export.Service
	release   func()
}

func (a *app) Close() {
	if a.release != nil {
		a.release()
	}
}

// newApp loads configuration and wires the export pipeline. The caller must
// Close the app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	tp := telemetry.NewProvider(telemetry.Config{ServiceName: cfg.AppID}, prometheus.NewRegistry())

	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}
	var sealer *store.Sealer
	if key != nil {
		if sealer, err = store.NewSealer(key); err != nil {
			return nil, err
		}
	}

	records, release, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		Sealer:      sealer,
		Logger:      logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug().Str("driver", cfg.StoreDriver).Bool("sealed", sealer != nil).Msg("store ready")

	assets := assetFS(cfg)
	fetcher, err := assetFetcher(cfg)
	if err != nil {
		release()
		return nil, err
	}

	catalog := i18n.NewCatalog()
	if err := catalog.LoadFS(assets); err != nil {
		release()
		return nil, fmt.Errorf("load translations: %w", err)
	}

	cache := docx.NewAssetCache(fetcher,
		docx.WithMaxAge(cfg.AssetMaxAge),
		docx.WithCacheLogger(logger.With().Str("component", "asset_cache").Logger()),
		docx.WithCacheMetrics(tp),
	)
	registry := docmodel.NewRegistry(catalog, logger,
		notfallpass.Builder{},
		doctorletter.Builder{},
		offlabel.Builder{},
	)
	mapper := docx.NewMapper(cache, catalog, logger.With().Str("component", "docx").Logger())

	exporter := export.NewService(records, registry, mapper, assets,
		export.WithApp(cfg.AppID, cfg.AppVersion),
		export.WithDefaultLocale(cfg.DefaultLocale),
		export.WithMetrics(tp),
		export.WithLogger(logger),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: tp,
		assets:    assets,
		records:   records,
		exporter:  exporter,
		release:   release,
	}, nil
}

// assetFS is the tree manifests, schemas and translations are read from.
// The HTTP source only changes where the DOCX mapper fetches from.
func assetFS(cfg *config.Config) fs.FS {
	if cfg.AssetSource == config.AssetsDir {
		return os.DirFS(cfg.AssetDir)
	}
	return formpacks.FS()
}

func assetFetcher(cfg *config.Config) (docx.Fetcher, error) {
	switch cfg.AssetSource {
	case config.AssetsEmbedded:
		return docx.FSFetcher{FS: formpacks.FS()}, nil
	case config.AssetsDir:
		return docx.FSFetcher{FS: os.DirFS(cfg.AssetDir)}, nil
	case config.AssetsHTTP:
		return docx.NewHTTPFetcher(cfg.AssetBaseURL), nil
	}
	return nil, fmt.Errorf("unknown asset source %q", cfg.AssetSource)
}
