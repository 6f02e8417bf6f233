package dbmysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"feedview/internal/config"
)

// NewMySQL returns a GORM DB instance connected to MySQL with the feed
// tables migrated.
func NewMySQL(cnf *config.Config) (*gorm.DB, error) {
	db, err := Open(mysql.Open(cnf.DSN()), cnf.Database.MaxOpenConns, cnf.Database.MaxIdleConns)
	if err != nil {
		return nil, err
	}

	log.Println("✅ Connected to MySQL successfully")
	return db, nil
}

// Open is NewMySQL for an arbitrary dialector.
func Open(dialector gorm.Dialector, maxOpen, maxIdle int) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Warn),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&MediaRef{}, &Post{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
