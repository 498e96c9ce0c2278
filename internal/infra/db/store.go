package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"certmanager/internal/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type Store struct {
	DB      *gorm.DB
	Dialect string
}

func NewStore(cfg config.Config, log logrus.FieldLogger) (*Store, error) {
	store, err := Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// Open connects without migrating. postgres:// and postgresql:// URLs select
// PostgreSQL; anything else is a sqlite location, with an optional
// sqlite:/// prefix stripped.
func Open(databaseURL string, log logrus.FieldLogger) (*Store, error) {
	dialect, dsn := parseDatabaseURL(databaseURL)
	gcfg := &gorm.Config{Logger: newGormLogger(log)}

	var (
		gdb *gorm.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		gdb, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	default:
		gdb, err = gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}
	return &Store{DB: gdb, Dialect: dialect}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errDBUnavailable
	}
	if err := s.DB.WithContext(ctx).AutoMigrate(&ControlModel{}, &TextLogModel{}, &EvidenceModel{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func parseDatabaseURL(raw string) (string, string) {
	url := strings.TrimSpace(raw)
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres, url
	}
	for _, prefix := range []string{"sqlite:///", "sqlite://", "sqlite:"} {
		if strings.HasPrefix(lower, prefix) {
			return DialectSQLite, url[len(prefix):]
		}
	}
	return DialectSQLite, url
}

func newGormLogger(log logrus.FieldLogger) logger.Interface {
	if log == nil {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
