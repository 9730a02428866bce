package database

import (
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
)

var DB *gorm.DB

// NewGormLogger routes GORM's SQL log through zerolog.
func NewGormLogger(slow time.Duration, level logger.LogLevel) logger.Interface {
	zl := logging.With().Str("component", "gorm").Logger()
	return logger.New(stdlog.New(zl, "", 0), logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Config is shared by every dialector. TranslateError turns unique
// violations into gorm.ErrDuplicatedKey regardless of driver.
func Config(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
	}
}

func Connect(cfg config.DatabaseConfig) error {
	logging.Info().
		Str("host", cfg.Host).
		Str("db", cfg.Name).
		Str("user", cfg.User).
		Int("port", cfg.Port).
		Str("sslmode", cfg.SSLMode).
		Msg("connecting to database")

	db, err := gorm.Open(postgres.Open(cfg.DSN()), Config(NewGormLogger(cfg.SlowThreshold, logger.Warn)))
	if err != nil {
		return fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	DB = db
	logging.Info().Msg("database connection established")
	return nil
}

func Migrate(db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	logging.Info().Int("models", len(models)).Msg("running AutoMigrate")
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logging.Info().Msg("migrations complete")
	return nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
