package users

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/msvee3/Interview-prep/internal/models"
)

var gormOpen = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

const connectRetryInterval = 500 * time.Millisecond

// PostgresConfig holds the connection settings for the profile database.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ConnectWithRetry opens the database and pings it, retrying until timeout
// elapses. The database is usually still starting when the service boots.
func ConnectWithRetry(dsn string, timeout time.Duration, logger *zap.Logger) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var db *gorm.DB
	attempt := 0
	err := retry.Do(ctx, retry.NewConstant(connectRetryInterval), func(ctx context.Context) error {
		attempt++
		conn, err := gormOpen(dsn)
		if err == nil {
			err = (&UserRepository{DB: conn}).Ping(ctx)
		}
		if err != nil {
			logger.Warn("Database not ready, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempt(s): %w", attempt, err)
	}
	return db, nil
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}
