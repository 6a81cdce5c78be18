// Package store is the relational record store. Every row carries the id of
// the account that owns it and every by-id lookup goes through the ownership guard.
package store

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/pkg/logger"
)

// Store owns the database handle.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects using the configured driver.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log.Named("gorm"), cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY inside transactions.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
	}

	return &Store{db: db, logger: log}, nil
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.Enclosure{},
		&models.Animal{},
		&models.Supply{},
		&models.FeedCompound{},
		&models.CompoundIngredient{},
		&models.FeedingRecord{},
		&models.HealthRecord{},
		&models.HealthRecordAnimal{},
		&models.WeighingRecord{},
		&models.Sale{},
		&models.SaleLine{},
		&models.Cost{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	s.logger.Info("schema migrated")
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// RunInTx runs fn inside a single transaction. Any error returned by fn rolls
// back every write made through the Tx.
func (s *Store) RunInTx(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
}

// Read returns a non-transactional Tx for queries.
func (s *Store) Read(ctx context.Context) *Tx {
	return &Tx{db: s.db.WithContext(ctx)}
}

// Tx exposes the record operations available inside and outside transactions.
type Tx struct {
	db *gorm.DB
}

// Insert creates a row. Associations are never written implicitly.
func (t *Tx) Insert(v any) error {
	return errs.Storage("insert", t.db.Omit(clause.Associations).Create(v).Error)
}

// Save writes every column of an existing row. Associations are never written implicitly.
func (t *Tx) Save(v any) error {
	return errs.Storage("save", t.db.Omit(clause.Associations).Save(v).Error)
}

// Delete removes a row by primary key.
func (t *Tx) Delete(v any) error {
	return errs.Storage("delete", t.db.Delete(v).Error)
}

// List loads every row of dest's type owned by accountID, in the given order.
func (t *Tx) List(dest any, accountID, order string) error {
	q := t.db.Where("account_id = ?", accountID)
	if order != "" {
		q = q.Order(order)
	}
	return errs.Storage("list", q.Find(dest).Error)
}

// Find loads rows of dest's type owned by accountID that match the condition.
func (t *Tx) Find(dest any, accountID, order, query string, args ...any) error {
	q := t.db.Where("account_id = ?", accountID).Where(query, args...)
	if order != "" {
		q = q.Order(order)
	}
	return errs.Storage("find", q.Find(dest).Error)
}
