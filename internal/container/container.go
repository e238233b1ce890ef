// Package container wires the shared infrastructure clients and the identity
// service from configuration, so every command builds the stack the same way.
package container

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/travelia/travel-backend/config"
	"github.com/travelia/travel-backend/internal/application"
	"github.com/travelia/travel-backend/internal/infrastructure/postgres"
	"github.com/travelia/travel-backend/pkg/helpers"
)

// Container holds the constructed components shared across commands.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher
	JWT    *helpers.JWTManager

	Identity *application.IdentityService
}

// Build constructs everything from config. Redis, Elasticsearch, and
// RabbitMQ are optional: when unconfigured or unreachable they are left nil
// and the identity service degrades to skipping the matching side effects.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, err
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable; session cache disabled")
		_ = rdb.Close()
		rdb = nil
	}

	var es *elasticsearch.Client
	if len(cfg.ESAddrs()) > 0 && cfg.ESUsersIndex != "" {
		if es, err = helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass); err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; user indexing disabled")
			es = nil
		}
	}

	var pub *helpers.RabbitPublisher
	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		if pub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue); err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; email delivery disabled")
			pub = nil
		}
	}

	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	svc := application.NewIdentityService(
		postgres.Repositories(pool),
		postgres.NewUnitOfWork(pool),
		application.NewOtpManager(cfg.OtpTTL, logger),
		application.NewTokenIssuer(jwt, rdb, logger),
		pub, es, cfg.AppName, cfg.ESUsersIndex, logger,
	)

	return &Container{
		Cfg:      cfg,
		Logger:   logger,
		Pool:     pool,
		Redis:    rdb,
		ES:       es,
		Rabbit:   pub,
		JWT:      jwt,
		Identity: svc,
	}, nil
}

// Close releases every client the container owns.
func (c *Container) Close() {
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
