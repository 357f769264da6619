package database

import (
	"fmt"

	_ "github.com/lib/pq"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func Connect(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "v1_",
		}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema for every persisted model. Shared with the
// sqlite-backed repository tests.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Artefact{},
		&models.IngestionLog{},
		&models.Subscription{},
		&models.SubscriptionListType{},
		&models.ArtefactSearch{},
		&models.Notification{},
		&models.Location{},
		&models.HtmlArtefact{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
