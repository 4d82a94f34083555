package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg config.PostgresConfig, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	serviceLog.Info("Connecting to Postgres...", "host", cfg.Host, "dbname", cfg.DBName)
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_chat_user_id", `
			ALTER TABLE "chat"
			ADD CONSTRAINT "fk_chat_user_id"
			FOREIGN KEY ("user_id") REFERENCES "user"("id")
			ON DELETE CASCADE`},
		{"fk_message_chat_id", `
			ALTER TABLE "message"
			ADD CONSTRAINT "fk_message_chat_id"
			FOREIGN KEY ("chat_id") REFERENCES "chat"("id")
			ON DELETE CASCADE`},
		{"fk_vote_message_id", `
			ALTER TABLE "vote"
			ADD CONSTRAINT "fk_vote_message_id"
			FOREIGN KEY ("message_id") REFERENCES "message"("id")
			ON DELETE CASCADE`},
		{"fk_stream_chat_id", `
			ALTER TABLE "stream"
			ADD CONSTRAINT "fk_stream_chat_id"
			FOREIGN KEY ("chat_id") REFERENCES "chat"("id")
			ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		if err := s.db.Exec(fmt.Sprintf(`
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					%s;
				END IF;
			END $$;`, c.name, c.ddl)).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// AutoMigrate creates or updates every table in the schema. Shared with
// the test helpers so test databases match production layout.
func AutoMigrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&types.User{},
		&types.Chat{},
		&types.Message{},
		&types.Vote{},
		&types.Document{},
		&types.Suggestion{},
		&types.Stream{},
	)
}
