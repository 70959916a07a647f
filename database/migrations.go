package database

import (
	"log"

	"sakudo-app/sakudo/models"

	"gorm.io/gorm"
)

// RunMigrations creates the users and tasks tables when missing and adds
// missing columns and indexes. It never drops anything.
func RunMigrations(db *gorm.DB) error {
	log.Println("Ensuring tables exist...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)

	if err != nil {
		log.Printf("Table setup failed: %v", err)
		return err
	}

	return nil
}
