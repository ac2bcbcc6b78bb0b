package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/shanejorr-team/personal-blog/internal/config"
	"github.com/shanejorr-team/personal-blog/internal/domain/gallery"
	"github.com/shanejorr-team/personal-blog/internal/domain/photo"
	"github.com/shanejorr-team/personal-blog/internal/pkg/cache"
	"github.com/shanejorr-team/personal-blog/internal/pkg/database"
	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
	"github.com/shanejorr-team/personal-blog/internal/pkg/storage"
)

// env holds the dependencies of one command invocation
type env struct {
	cfg     *config.Config
	db      *sqlx.DB
	redis   *redis.Client
	assets  storage.Store
	repo    photo.Repository
	service *photo.Service
	queries *photo.Queries
}

func (e *env) close() {
	database.CloseRedis(e.redis)
	database.ClosePostgres(e.db)
}

func (e *env) assembler() *gallery.Assembler {
	var dims cache.DimensionCache = cache.NewMemory()
	if e.redis != nil {
		dims = cache.NewRedis(e.redis, e.cfg.DimensionCacheTTL)
	}
	return gallery.NewAssembler(e.queries, e.assets, dims, gallery.Options{
		AssetRoot:     e.cfg.AssetRoot,
		VariantWidths: e.cfg.VariantWidths,
	})
}

type commandFunc func(c *cli.Context, e *env) error

// run opens the store, brings the schema up to date and hands the wired
// dependencies to fn. Everything is closed when fn returns.
func run(cfg *config.Config, name string, fn commandFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, _ := logger.WithRun(c.Context, name)
		c.Context = ctx
		log := logger.FromContext(ctx)
		log.Debug().Msg("Command started")

		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		e := &env{cfg: cfg, db: db}
		defer e.close()

		if err := database.Migrate(db); err != nil {
			return err
		}

		if e.redis, err = database.NewRedis(ctx, cfg.RedisURL); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, dimension cache is in-memory")
			e.redis = nil
		}

		if e.assets, err = newAssetStore(ctx, cfg); err != nil {
			return fmt.Errorf("open asset store: %w", err)
		}

		e.repo = photo.NewRepository(db)
		e.service = photo.NewService(e.repo, e.assets)
		e.queries = photo.NewQueries(e.repo, cfg.HomepageSlots)

		return fn(c, e)
	}
}

func newAssetStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.AssetBackend {
	case config.BackendS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.BackendR2:
		return storage.NewR2Storage(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
	case config.BackendSupabase:
		return storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	default:
		return storage.NewLocalStorage(cfg.AssetDir, cfg.AssetRoot)
	}
}
