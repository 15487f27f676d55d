package main

import (
	"ledger_service/internal/config" // Custom import path (Config)
	"ledger_service/internal/db"     // Custom import path (Database)
	"ledger_service/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Seed data: an administrator and a demo user for local testing. The
// passwords are placeholders for development only.
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Connect to the configured store
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// Make sure the schema exists before inserting
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Seed records: one admin with an empty balance, one demo user with a
	// small starting balance
	seeds := []struct {
		Username string  // Account name
		Password string  // Development credential
		Role     string  // Account role
		Balance  float64 // Starting balance
	}{
		{Username: "admin_master", Password: "change-me-now", Role: "admin", Balance: 0},
		{Username: "demo_user", Password: "demo-password", Role: "user", Balance: 50},
	}

	for _, s := range seeds {
		// Skip accounts that already exist so seeding is idempotent
		var existing domain.User
		if err := gdb.Where("username = ?", s.Username).First(&existing).Error; err == nil {
			logrus.Infof("user %s already exists, skipping", s.Username)
			continue
		}
		// Hash the development credential
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			logrus.Fatalf("failed to hash password for %s: %v", s.Username, err)
		}
		user := domain.User{
			Username: s.Username,   // Account name
			Password: string(hash), // Bcrypt hash
			Role:     s.Role,       // Account role
			Balance:  s.Balance,    // Starting balance
		}
		// Insert the account
		if err := gdb.Create(&user).Error; err != nil {
			logrus.Fatalf("failed to seed user %s: %v", s.Username, err)
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New account ID
			"username": user.Username, // Account name
			"role":     user.Role,     // Account role
			"balance":  user.Balance,  // Starting balance
		}).Info("Seeded user") // Log the seeded account
	}
	logrus.Info("Seeding completed.") // Log successful seeding
}
