package repo

import (
	"DataSentinel/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// sqlitePrefix помечает DSN встроенной базы: "sqlite:<путь>".
const sqlitePrefix = "sqlite:"

// Models: все модели, которые мигрирует сервер.
func Models() []any {
	return []any{
		&model.User{},
		&model.Consent{},
		&model.File{},
		&model.FileShare{},
		&model.Blob{},
		&model.Honeytoken{},
		&model.Watermark{},
		&model.Policy{},
		&model.AccessRequest{},
		&model.Partner{},
		&model.PartnerBlockedUser{},
		&model.PartnerStatusChange{},
		&model.TrapLog{},
		&model.AccessLog{},
		&model.Notification{},
		&model.Escalation{},
	}
}

// InitDB открывает базу по DSN и применяет миграции.
// Строка вида "sqlite:<путь>" открывает SQLite (modernc), иначе используется PostgreSQL.
func InitDB(dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if strings.HasPrefix(dsn, sqlitePrefix) {
		db, err = OpenSQLite(strings.TrimPrefix(dsn, sqlitePrefix), cfg)
	} else {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite открывает SQLite через драйвер modernc.org/sqlite.
// SQLite допускает одного писателя, поэтому пул ограничен одним соединением.
func OpenSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: path}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет схему.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
