package database

import (
	"fmt"
	"strings"
	"time"

	applog "anoa.com/minimalblog/pkg/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormWriter forwards gorm's log lines to the zerolog global logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	l := applog.Component("gorm")
	l.Warn().Msgf(format, args...)
}

func newGormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Open connects to the store named by databaseURL. postgres:// and
// postgresql:// URLs (or key=value DSNs containing host=) use the postgres
// driver; sqlite:// URLs, plain file paths and ":memory:" use SQLite.
func Open(databaseURL string) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if dialector.Name() == "sqlite" {
		// SQLite allows one writer; serializing through one connection keeps
		// transactions from failing with SQLITE_BUSY and keeps :memory: shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("database url is empty")
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"),
		strings.Contains(databaseURL, "host="):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		// sqlite:///blog.db is a relative path in SQLAlchemy URLs.
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(withForeignKeys(path)), nil
	case strings.Contains(databaseURL, "://"):
		return nil, fmt.Errorf("unsupported database url scheme: %s", databaseURL)
	default:
		return sqlite.Open(withForeignKeys(databaseURL)), nil
	}
}

func withForeignKeys(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}
