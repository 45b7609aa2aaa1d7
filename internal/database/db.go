package database

import (
	"context"
	"time"

	"go-pos-ledger/internal/apperrors"
	"go-pos-ledger/internal/models"
	"go-pos-ledger/internal/settings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Store is the relational store behind every screen. All methods take a
// context and wrap failures so callers can match apperrors sentinels.
type Store struct {
	db *gorm.DB
}

// New wraps an existing connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the connection for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
}

// Connect opens the database, waiting for it to come up.
func Connect(driver, dsn string, debug bool) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("DB_DSN is empty, configure your database")
	}
	dial, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	var db *gorm.DB
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dial, &gorm.Config{
			Logger: logger.New(log.StandardLogger(), logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  level,
				IgnoreRecordNotFoundError: true,
			}),
		})
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("failed to connect to database, retrying")
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s after %d attempts", driver, connectAttempts)
	}

	log.WithField("driver", driver).Info("connected to database")
	return New(db), nil
}

// Migrate syncs the schema and seeds the default settings rows.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Discount{},
		&models.Sale{},
		&models.Expense{},
		&models.Setting{},
	)
	if err != nil {
		return errors.Wrap(err, "auto-migrate")
	}

	for _, row := range settings.Defaults().Rows() {
		row := row
		if err := s.db.WithContext(ctx).Where(models.Setting{Key: row.Key}).FirstOrCreate(&row).Error; err != nil {
			return errors.Wrapf(err, "seed setting %s", row.Key)
		}
	}

	log.Info("database schema synced")
	return nil
}

// upstream tags a store failure, turning a missing row into ErrNotFound.
func upstream(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(apperrors.ErrNotFound, format, args...)
	}
	return errors.Wrapf(apperrors.ErrUpstream, format+": %v", append(args, err)...)
}
