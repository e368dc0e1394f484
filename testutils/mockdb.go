package testutils

import (
	"database/sql"

	"spoolman/spoolman/config"
	"spoolman/spoolman/database"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupMockDB sets up a mock database connection
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	mockDB := &database.Database{
		DB: gormDB,
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// SetupSQLiteDB opens a migrated in-memory sqlite database with foreign keys
// enforced. Each call returns an independent database.
func SetupSQLiteDB() (*database.Database, func()) {
	cfg := config.Load()
	cfg.AppEnv = "test"
	cfg.DBType = "sqlite"
	cfg.DBPath = ":memory:"

	db, err := database.Setup(cfg)
	if err != nil {
		panic(err)
	}
	return db, db.Close
}
