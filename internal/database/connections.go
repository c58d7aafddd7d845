// internal/database/connections.go
// Connection bootstrap for the league's optional side channels: the Redis
// idempotency cache (required) and the MySQL/MongoDB side stores the
// League Manager may enable (both optional; empty DSN/URI skips them).

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connections holds whichever data stores are configured. MySQL and MongoDB
// are left nil when their connection string is empty.
type Connections struct {
	MySQL   *sql.DB
	MongoDB *mongo.Database
	Redis   *redis.Client
	logger  *zap.SugaredLogger
}

// MySQLConfig contains MySQL connection parameters.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoConfig contains MongoDB connection parameters.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config holds configuration for every data store Initialize may open.
type Config struct {
	MySQL   MySQLConfig
	MongoDB MongoConfig
	Redis   RedisConfig
}

// Initialize opens Redis unconditionally and MySQL/MongoDB only when their
// connection strings are non-empty.
func Initialize(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Connections, error) {
	conn := &Connections{logger: logger}

	if err := conn.initRedis(ctx, cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if cfg.MySQL.DSN != "" {
		if err := conn.initMySQL(ctx, cfg.MySQL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize MySQL: %w", err)
		}
	}

	if cfg.MongoDB.URI != "" {
		if err := conn.initMongoDB(ctx, cfg.MongoDB); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
	}

	logger.Info("data store connections established")
	return conn, nil
}

func (c *Connections) initMySQL(ctx context.Context, cfg MySQLConfig) error {
	var err error
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		c.MySQL, err = sql.Open("mysql", cfg.DSN)
		if err != nil {
			c.logger.Warnw("failed to open MySQL connection", "attempt", i+1, "err", err)
			time.Sleep(time.Second * time.Duration(i+1))
			continue
		}

		c.MySQL.SetMaxOpenConns(cfg.MaxOpenConns)
		c.MySQL.SetMaxIdleConns(cfg.MaxIdleConns)
		c.MySQL.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		if err = c.MySQL.PingContext(ctx); err != nil {
			c.logger.Warnw("failed to ping MySQL", "attempt", i+1, "err", err)
			time.Sleep(time.Second * time.Duration(i+1))
			continue
		}

		c.logger.Info("MySQL snapshot store connected")
		return nil
	}

	return fmt.Errorf("failed to connect to MySQL after %d attempts: %w", maxRetries, err)
}

func (c *Connections) initMongoDB(ctx context.Context, cfg MongoConfig) error {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c.MongoDB = client.Database(cfg.Database)
	c.logger.Info("MongoDB event audit log connected")
	return nil
}

func (c *Connections) initRedis(ctx context.Context, cfg RedisConfig) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	c.logger.Info("Redis idempotency cache connected")
	return nil
}

// Close gracefully closes whichever connections were opened.
func (c *Connections) Close() {
	if c.MySQL != nil {
		if err := c.MySQL.Close(); err != nil {
			c.logger.Warnw("error closing MySQL connection", "err", err)
		}
	}

	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.MongoDB.Client().Disconnect(ctx); err != nil {
			c.logger.Warnw("error closing MongoDB connection", "err", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Warnw("error closing Redis connection", "err", err)
		}
	}
}

// HealthCheck verifies every opened connection is reachable.
func (c *Connections) HealthCheck(ctx context.Context) error {
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	if c.MySQL != nil {
		if err := c.MySQL.PingContext(ctx); err != nil {
			return fmt.Errorf("MySQL health check failed: %w", err)
		}
	}
	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	return nil
}
