// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"

	accessDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/access"
	auditDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/audit"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
	studentDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/student"
	userDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory database with every table migrated.
// The shared cache keeps one database across pool connections, which the
// asynchronous audit writer needs.
func NewSQLiteDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userDatamodel.User{},
		&schoolDatamodel.School{},
		&schoolDatamodel.Module{},
		&accessDatamodel.RolePermission{},
		&studentDatamodel.Student{},
		&auditDatamodel.Log{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX wraps the gorm connection pool for sqlx readers. sqlite uses the same
// "?" bindvars as the queries are written with.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
