package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"placement_backend/internal/logger"
	"placement_backend/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	activeApplicationIndex = "uniq_active_application"
)

// Open подключает GORM к postgres или mysql
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// ErrDuplicatedKey вместо текстов драйвера
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей и создает индексы,
// которые GORM по тегам описать не умеет
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.CompanyProfile{},
		&models.StudentProfile{},
		&models.CvArtifact{},
		&models.JobPosting{},
		&models.Application{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	if err := ensureActiveApplicationIndex(db); err != nil {
		return err
	}

	logger.Info("database migrated", "dialect", db.Dialector.Name())
	return nil
}

// ensureActiveApplicationIndex - не больше одной не отозванной заявки
// на пару (студент, вакансия)
func ensureActiveApplicationIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case DriverPostgres:
		return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeApplicationIndex + `
			ON applications (student_id, posting_id)
			WHERE status <> 'withdrawn'`).Error

	case DriverMySQL:
		// В mysql нет частичных индексов, используем генерируемую колонку:
		// для отозванных заявок она NULL и в уникальности не участвует
		if db.Migrator().HasIndex(&models.Application{}, activeApplicationIndex) {
			return nil
		}
		return db.Exec(`ALTER TABLE applications
			ADD COLUMN active_key VARCHAR(80)
				GENERATED ALWAYS AS (IF(status <> 'withdrawn', CONCAT(student_id, ':', posting_id), NULL)) STORED,
			ADD UNIQUE INDEX ` + activeApplicationIndex + ` (active_key)`).Error

	default:
		logger.Warn("active application index is not supported for dialect", "dialect", db.Dialector.Name())
		return nil
	}
}
