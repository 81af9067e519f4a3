package config

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	model "planboard.com/planboard/internal/models"
)

func New(dsn string) *gorm.DB {
	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrgMembership{},
		&model.Workspace{},
		&model.Membership{},
		&model.DailyPlan{},
		&model.Task{},
		&model.Subtask{},
		&model.Attachment{},
		&model.Category{},
		&model.Comment{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	return db
}
