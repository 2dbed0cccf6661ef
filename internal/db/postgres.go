package db

import (
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		return nil, fmt.Errorf("missing POSTGRES_DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresService{
		db:  gdb,
		log: log.With("service", "PostgresService"),
	}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	return s.db.AutoMigrate(&types.LearningPathRecord{})
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
