package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swoyamsuwal/django-twitter/internal/config"
	"github.com/swoyamsuwal/django-twitter/internal/events"
	"github.com/swoyamsuwal/django-twitter/internal/repo"
	"github.com/swoyamsuwal/django-twitter/migrations"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	cfg    config.Config
	log    *zap.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	pub    events.Publisher
	router *gin.Engine
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	db, err := OpenPostgres(context.Background(), cfg.PG.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db

	rdb, err := newRedis(cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.redis = rdb

	if cfg.App.MigrateOnStart {
		if err := RunMigrations(cfg.PG.DSN, "up", log); err != nil {
			a.redis.Close()
			a.db.Close()
			return nil, err
		}
	}

	pub, err := OpenPublisher(cfg.Events)
	if err != nil {
		a.redis.Close()
		a.db.Close()
		return nil, err
	}
	a.pub = pub
	log.Info("events publisher ready", zap.String("driver", cfg.Events.Driver))

	a.router = NewRouter(Deps{
		Config: cfg,
		Log:    log,
		Tweets: repo.NewPGTweetRepo(db),
		Users:  repo.NewPGUserRepo(db),
		Redis:  rdb,
		Events: pub,
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	var errs []error
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	return errors.Join(errs...)
}

// OpenPostgres connects a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// OpenPublisher returns the event publisher selected by cfg.Driver.
func OpenPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverNATS:
		return events.DialNATS(cfg.NATSURL, cfg.Exchange)
	case config.EventsDriverAMQP:
		return events.DialAMQP(cfg.AMQPURL, cfg.Exchange)
	case config.EventsDriverNone, "":
		return events.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// RunMigrations applies a goose command (up, down, status, ...) using the
// migrations embedded in the binary.
func RunMigrations(dsn, command string, log *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(log.Named("goose")))

	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Run(command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
