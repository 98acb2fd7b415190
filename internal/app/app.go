// Package app assembles the archive server from configuration.
package app

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"

	"judicial-archive/internal/config"
	"judicial-archive/internal/i18n"
	"judicial-archive/internal/metrics"
	"judicial-archive/internal/repositories"
	"judicial-archive/internal/services"
	"judicial-archive/internal/session"
	"judicial-archive/internal/storage/r2"
	"judicial-archive/pkg/crypto"
	jwtpkg "judicial-archive/pkg/jwt"

	"go.uber.org/zap"
)

type App struct {
	Config      config.Config
	Log         *zap.Logger
	Store       repositories.Store
	Audit       *repositories.AuditRepository
	Archive     *services.ArchiveService
	Users       *services.UserService
	Attachments *services.AttachmentService
	Translator  *i18n.Translator
	Tokens      jwtpkg.Issuer
	Revoker     session.Revoker
	Metrics     *metrics.Metrics
	Hasher      crypto.Hasher

	redis   *session.RedisRevoker
	closers []func() error
}

// OpenStore selects the storage backend named by STORE_DRIVER and migrates
// the schema for database backends when AUTO_MIGRATE is set.
func OpenStore(cfg config.Config, log *zap.Logger) (repositories.Store, error) {
	var db *repositories.DB
	var err error
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repositories.NewMemoryStore(), nil
	case config.StoreSQLite:
		db, err = repositories.OpenSQLite(cfg.SQLitePath, log)
	case config.StorePostgres:
		db, err = repositories.ConnectPostgres(cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	if cfg.AutoMigrate {
		if err := repositories.AutoMigrate(db.Gorm); err != nil {
			_ = db.SQL.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return repositories.NewGormStore(db.Gorm), nil
}

// New opens the configured store and wires every service around it.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	store, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}
	a, err := Build(ctx, cfg, log, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return a, nil
}

// Build wires services around an already opened store. The caller keeps
// ownership of store.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger, store repositories.Store) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, Store: store}

	tr, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return nil, err
	}
	a.Translator = tr

	secret := cfg.JWTAccessSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
		log.Warn("JWT_ACCESS_SECRET not set; using an ephemeral secret, tokens will not survive a restart")
	}
	a.Tokens = jwtpkg.Issuer{Secret: []byte(secret), Name: cfg.JWTIssuer, TTL: cfg.JWTAccessTTL}

	if cfg.RedisURL != "" {
		rr, err := session.NewRedisRevoker(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = rr
		a.Revoker = rr
		a.closers = append(a.closers, rr.Close)
	} else {
		a.Revoker = session.NewMemoryRevoker()
	}

	var observer services.Observer
	if cfg.MetricsEnabled {
		a.Metrics = metrics.New()
		observer = a.Metrics
	}

	a.Hasher = crypto.NewHasher(cfg.BCryptCost)
	a.Audit = repositories.NewAuditRepository(store)
	a.Archive = services.NewArchiveService(store, a.Audit, services.Options{
		EnforceStatusWorkflow: cfg.EnforceStatusWorkflow(),
		RecentActivities:      cfg.RecentActivities,
		Observer:              observer,
		Logger:                log,
	})
	a.Users = services.NewUserService(store, a.Audit, repositories.NewUserCache(repositories.UserCacheTTL), a.Hasher, log)

	// A nil *r2.Client must not end up inside the interface.
	var remote services.ObjectStore
	if cfg.R2Enabled() {
		client, err := r2.New(ctx, cfg)
		if err != nil && !errors.Is(err, r2.ErrNotConfigured) {
			a.Close()
			return nil, fmt.Errorf("r2 client: %w", err)
		}
		if client != nil {
			remote = client
		}
	} else {
		log.Info("r2 not configured; attachments are stored on local disk only")
	}
	a.Attachments = services.NewAttachmentService(a.Archive, services.NewStorageService(cfg.UploadDir), remote, cfg.MaxUploadBytes, log)

	return a, nil
}

// Seed loads demo data into an empty store. A zero seed picks a random one.
func (a *App) Seed(ctx context.Context, seed uint64) (*services.SeedResult, error) {
	opts := services.SeedOptions{Hasher: a.Hasher}
	if seed != 0 {
		opts.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return a.Archive.Seed(ctx, opts)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
