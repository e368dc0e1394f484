package database

import (
	"spoolman/spoolman/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the filament, spool and print_job tables,
// including the print_job -> spool cascade and the print_job indexes.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Filament{},
		&models.Spool{},
		&models.PrintJob{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Migration failed")
		return err
	}

	return nil
}
