// Package store opens the record database and loads pages of records.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/internal/webapp/config"
	"github.com/Alp4ka/cursorpaging/internal/webapp/model"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Names cycled through by Seed.
var Names = []string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel",
	"India", "Juliett", "Kilo", "Lima", "Mike", "November", "Oscar", "Papa", "Quebec",
	"Romeo", "Sierra", "Tango", "Uniform", "Victor", "Whiskey", "X-ray", "Yankee", "Zulu",
}

// SeedStart is the creation time of the first seeded record.
var SeedStart = time.Date(1999, 1, 2, 10, 15, 30, 0, time.UTC)

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnsupportedDriver, cfg.Driver)
	}
}

// Open connects to the configured database. Statements are logged through
// log at debug level when cfg.Debug is set.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelDebug), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	// sqlite allows a single writer; in-memory databases exist per connection.
	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&model.DataRecord{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Seed inserts count records. Names cycle through Names, record i is
// created i+1 days after SeedStart and modified ten minutes later.
func Seed(ctx context.Context, db *gorm.DB, count int) ([]model.DataRecord, error) {
	records := make([]model.DataRecord, 0, count)

	created := SeedStart
	for i := range count {
		created = created.AddDate(0, 0, 1)

		r := model.NewDataRecord(Names[i%len(Names)], created)
		r.AuditInfo.ModifiedAt = created.Add(10 * time.Minute)
		records = append(records, r)
	}

	if count == 0 {
		return records, nil
	}

	if err := db.WithContext(ctx).CreateInBatches(&records, 100).Error; err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	return records, nil
}

// NewRepository returns the record repository.
func NewRepository(db *gorm.DB, log *slog.Logger) *cursorpaging.GormRepository[model.DataRecord] {
	return cursorpaging.NewGormRepository[model.DataRecord](db).
		WithGetters(model.Getters).
		WithLogger(log)
}
