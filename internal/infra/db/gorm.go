package db

import (
	"fmt"
	"strings"

	"salesnotes/internal/config"
	"salesnotes/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connectはcfg.DBDriverで選んだDBに接続する
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, gcfg)
	case config.DriverPostgres, "":
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// OpenSQLiteは外部キー有効のpure-Go SQLiteを開く。
// ":memory:"は接続ごとに別DBになるので、プールを1接続に固定する
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	gormDB, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return gormDB, nil
}

// Migrateは全テーブルを作成・更新する
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.Product{},
		&model.SalesNote{},
		&model.NoteLineItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		return err
	}

	//name_lower追加前の行を埋める
	if err := backfillNameLower(gormDB, &model.Customer{}); err != nil {
		return err
	}
	return backfillNameLower(gormDB, &model.Product{})
}

type namedRow struct {
	ID   int64
	Name string
}

func backfillNameLower(gormDB *gorm.DB, table any) error {
	var rows []namedRow
	err := gormDB.Model(table).
		Select("id", "name").
		Where("name_lower = '' AND name <> ''").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("backfill name_lower: %w", err)
	}

	for _, r := range rows {
		err := gormDB.Model(table).
			Where("id = ?", r.ID).
			UpdateColumn("name_lower", model.SearchKey(r.Name)).Error
		if err != nil {
			return fmt.Errorf("backfill name_lower: %w", err)
		}
	}
	return nil
}
