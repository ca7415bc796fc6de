package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/cache"
	"github.com/spec-kit/tempofiller/internal/config"
	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/observability"
	"github.com/spec-kit/tempofiller/internal/persistence"
	"github.com/spec-kit/tempofiller/internal/repository"
	"github.com/spec-kit/tempofiller/internal/service"
	"github.com/spec-kit/tempofiller/internal/tempo"
	"github.com/spec-kit/tempofiller/internal/worker"
)

// application holds the wired dependencies shared by the commands.
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *observability.Metrics
	postgres *persistence.Postgres
	redis    *persistence.Redis
	client   *tempo.Client
	journal  *service.JournalService
	worklogs *service.WorklogService
}

func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	applyBuildVersion(cfg)

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return nil, err
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			logger.Error("failed to run migrations", zap.Error(err))
			return nil, err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)

	var issueStore cache.Store[domain.ResolvedIssue]
	if redis.Enabled() {
		issueStore = cache.NewRedisStore[domain.ResolvedIssue](redis.Client,
			issueCachePrefix(cfg.Redis.KeyPrefix, cfg.Tempo.BaseURL, cfg.Tempo.PersonalAccessToken),
			2*cfg.Tempo.IssueCacheTTL())
	}

	var (
		journalRepo repository.JournalRepository
		recentRepo  repository.RecentIssueRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		journalRepo = repository.NewJournalRepository(pool)
		recentRepo = repository.NewRecentIssueRepository(pool)
	} else {
		journalRepo = repository.NewMemoryJournal()
		recentRepo = repository.NewMemoryRecentIssues()
	}

	metrics := observability.NewMetrics()
	client := tempo.NewClient(tempo.Options{
		BaseURL:       cfg.Tempo.BaseURL,
		Token:         cfg.Tempo.PersonalAccessToken,
		UserAgent:     cfg.App.Name + "/" + cfg.App.Version,
		Timeout:       cfg.Tempo.Timeout(),
		IssueCacheTTL: cfg.Tempo.IssueCacheTTL(),
		IssueStore:    issueStore,
		Logger:        logger,
		Metrics:       metrics,
	})

	dispatcher := events.NewInMemoryDispatcher()
	journal := service.NewJournalService(dispatcher, journalRepo, recentRepo, logger)
	worker.StartJournalWorker(journal)

	worklogs := service.NewWorklogService(service.WorklogDependencies{
		Client:         client,
		RecentRepo:     recentRepo,
		Dispatcher:     dispatcher,
		Logger:         logger,
		MaxBulkEntries: cfg.Tempo.MaxBulkEntries,
	})

	return &application{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		postgres: pg,
		redis:    redis,
		client:   client,
		journal:  journal,
		worklogs: worklogs,
	}, nil
}

func (a *application) Close() {
	a.redis.Close()
	a.postgres.Close()
	_ = a.logger.Sync()
}

// applyBuildVersion reports the linked binary version unless APP_VERSION
// overrides it.
func applyBuildVersion(cfg *config.Config) {
	if os.Getenv("APP_VERSION") == "" {
		cfg.App.Version = version
	}
}

// issueCachePrefix scopes shared issue entries to one Jira instance and one
// credential, so users never read each other's resolutions and clearing the
// cache only drops the caller's own entries. The token is hashed, never stored.
func issueCachePrefix(base, baseURL, token string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host + strings.TrimRight(u.Path, "/")
	}
	sum := sha256.Sum256([]byte(token))
	return base + host + ":" + hex.EncodeToString(sum[:6]) + ":"
}
