package di

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"helfy-server/internal/activity"
	"helfy-server/internal/auth"
	"helfy-server/internal/auth/adapter/persistence/postgres"
	"helfy-server/internal/auth/config"
	"helfy-server/internal/shared/logger"
	"helfy-server/internal/shared/retry"
)

// Container owns the process-wide dependencies and their lifecycle. The
// database handle is opened here at startup and closed at shutdown; no
// package holds singleton connection state.
type Container struct {
	mu sync.Mutex

	AuthModule *auth.Module
	AuthConfig *config.Config
	Activity   *activity.Recorder
	Logger     logger.Logger

	db *sql.DB
}

// NewContainer creates an empty DI container
func NewContainer(log logger.Logger) *Container {
	return &Container{Logger: log}
}

// InitializeAuth connects to the store (gated by a bounded retry loop),
// applies migrations, and wires the auth module. Traffic must not be
// accepted before this returns.
func (c *Container) InitializeAuth(ctx context.Context, cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.AuthConfig = cfg

	err := retry.Do(ctx, retry.Config{
		Attempts: cfg.ConnectAttempts,
		Interval: cfg.ConnectInterval,
	}, func(ctx context.Context) error {
		db, openErr := postgres.Open(ctx, cfg.DatabaseURL)
		if openErr != nil {
			c.Logger.Warnf("store not reachable yet: %v", openErr)
			return openErr
		}
		c.db = db
		return nil
	})
	if err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	if err := postgres.RunMigrations(ctx, c.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	recorder, err := activity.NewRecorder()
	if err != nil {
		return fmt.Errorf("failed to create activity recorder: %w", err)
	}
	c.Activity = recorder

	c.AuthModule = auth.NewModule(c.db, cfg, recorder, c.Logger)

	if err := c.AuthModule.Usecase().EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	return nil
}

// HealthCheck pings the store
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("store not initialized")
	}
	return c.db.PingContext(ctx)
}

// Close releases the container's resources
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Activity != nil {
		// Best-effort flush; stdout sync errors are not actionable.
		_ = c.Activity.Sync()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
