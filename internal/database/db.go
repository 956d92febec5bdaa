package database

import (
	"fmt"
	"time"

	"go-sales-ledger/internal/logger"
	"go-sales-ledger/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects to the configured database, waiting for it to come up.
func Open(driver, dsn, logLevel string, log *logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("database")

	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(parseLogLevel(logLevel)),
		TranslateError: true,
	}

	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, cfg)
		if err == nil {
			break
		}
		log.Warnw("failed to connect to database, retrying", "attempt", i+1, "of", connectAttempts, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", connectAttempts, err)
	}

	if driver == "sqlite" {
		// one writer at a time; also keeps :memory: databases on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Infow("connected to database", "driver", driver)
	return db, nil
}

// Migrate syncs the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
