// Package sqlstore implements repository.Store on top of GORM. SQLite, MySQL
// and Postgres dialects are supported.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var _ repository.Store = (*Store)(nil)

// Options selects the SQL dialect and connection string.
type Options struct {
	Driver string
	DSN    string
}

// Store is the GORM implementation of repository.Store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	inTx   bool
}

// Open connects to the database described by opts.
func Open(opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect %s: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps in-memory
		// databases alive across calls.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{db: db, logger: logger}, nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	if opts.DSN == "" {
		return nil, errors.New("sqlstore: dsn must not be empty")
	}
	switch opts.Driver {
	case DriverSQLite:
		return sqlite.Open(opts.DSN), nil
	case DriverMySQL:
		return mysql.Open(MySQLDSN(opts.DSN)), nil
	case DriverPostgres:
		return postgres.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", opts.Driver)
	}
}

// MySQLDSN makes sure DATETIME columns scan into time.Time.
func MySQLDSN(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}

// AllModels returns every table managed by the store.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.AllowedEmail{},
		&models.Cow{},
		&models.Bull{},
		&models.BreedingRecord{},
		&models.Pregnancy{},
		&models.MedicineInventory{},
		&models.MedicineTreatment{},
		&models.MilkingRecord{},
		&models.Reminder{},
	}
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("sqlstore: auto-migrate: %w", err)
	}
	return nil
}

// InTx runs fn inside a database transaction. Nested calls reuse the
// enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger, inTx: true})
	})
}

// Atomic is always true for SQL databases.
func (s *Store) Atomic() bool { return true }

// Close releases the connection pool.
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func requireOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return models.ErrUnauthenticated
	}
	return nil
}

func newID() string { return uuid.NewString() }

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicate
	default:
		return models.WrapStore(op, err)
	}
}

// scoped restricts a query to one record of one owner.
func scoped(db *gorm.DB, owner, id string) *gorm.DB {
	return db.Where("id = ? AND user_id = ?", id, owner)
}

func getScoped[T any](ctx context.Context, db *gorm.DB, op, owner, id string) (*T, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, models.ErrNotFound
	}
	var out T
	if err := scoped(db.WithContext(ctx), owner, id).First(&out).Error; err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func updateScoped[T any](ctx context.Context, db *gorm.DB, op, owner, id string, values map[string]interface{}) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	var model T
	res := scoped(db.WithContext(ctx).Model(&model), owner, id).Updates(values)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports zero affected rows when nothing changed; tell that apart
	// from a missing record.
	var count int64
	if err := scoped(db.WithContext(ctx).Model(&model), owner, id).Count(&count).Error; err != nil {
		return translate(op, err)
	}
	if count == 0 {
		return models.ErrNotFound
	}
	return nil
}

func deleteScoped[T any](ctx context.Context, db *gorm.DB, op, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	var model T
	res := scoped(db.WithContext(ctx), owner, id).Delete(&model)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func listOwned[T any](ctx context.Context, db *gorm.DB, op, owner string, build func(*gorm.DB) *gorm.DB) ([]T, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	q := db.WithContext(ctx).Where("user_id = ?", owner)
	if build != nil {
		q = build(q)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func create(ctx context.Context, db *gorm.DB, op string, value interface{}) error {
	return translate(op, db.WithContext(ctx).Create(value).Error)
}
