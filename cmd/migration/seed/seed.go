package seed

import (
	"time"

	"server/config"
	"server/internal/logger"
	. "server/internal/models"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			FirstName:   "Jane",
			LastName:    "Smith",
			DisplayName: "Jane Smith",
			Email:       stringPtr("jane.smith@example.com"),
			Login:       "jsmith",
			IsAdmin:     true,
		}, {
			FirstName:   "Marcus",
			LastName:    "Webb",
			DisplayName: "Marcus Webb",
			Email:       stringPtr("marcus.webb@example.com"),
			Login:       "mwebb",
			IsAdmin:     false,
		},
	}

	for i := range users {
		var existingUser User
		if err := db.First(&existingUser, "login = ?", users[i].Login).Error; err == nil {
			log.Info("User already exists", "login", users[i].Login)
			users[i] = existingUser
			continue
		}
		log.Info("Seeding user", "login", users[i].Login)
		if err := db.Create(&users[i]).Error; err != nil {
			log.Er("failed to create user", err, "login", users[i].Login)
		}
	}

	// Give the first seeded user an unlocked test so a dev environment
	// can exercise the full submit flow immediately.
	if len(users) > 0 && users[0].ID != "" {
		purchase := PurchasedTest{
			UserID:      users[0].ID,
			TestID:      "adpTest",
			Unlocked:    true,
			PurchasedAt: time.Now(),
		}
		var existing PurchasedTest
		if err := db.First(&existing, "user_id = ? AND test_id = ?",
			purchase.UserID, purchase.TestID).Error; err != nil {
			if err := db.Create(&purchase).Error; err != nil {
				log.Er("failed to seed purchase", err)
			}
		}
	}

	return nil
}
