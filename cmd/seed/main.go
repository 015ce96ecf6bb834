package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rishee01/smartfix/internal/config"
	"github.com/rishee01/smartfix/internal/database"
	"github.com/rishee01/smartfix/internal/model"
	"github.com/rishee01/smartfix/internal/scoring"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var sampleReports = []struct {
	lat, lon    float64
	description string
	label       string
	confidence  float64
}{
	{28.6139, 77.2090, "Large pothole on Main Street", model.CategoryPothole, 0.92},
	{28.6155, 77.2100, "Overflowing garbage bin near park", model.CategoryGarbage, 0.88},
	{28.6200, 77.2050, "Water leaking from pipe", model.CategoryWaterLeakage, 0.95},
	{28.6120, 77.2110, "Streetlight not working at night", model.CategoryStreetlight, 0.85},
	{28.6180, 77.2080, "Illegal dumping site", model.CategoryIllegalDumping, 0.90},
}

func main() {
	adminEmail := flag.String("admin-email", "admin@smartfix.local", "Admin dashboard email")
	adminPassword := flag.String("admin-password", "admin123", "Admin dashboard password")
	wipe := flag.Bool("wipe", true, "Delete existing data before seeding")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if *wipe {
		for _, table := range []string{"verifications", "reports", "users", "volunteers", "admin_users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				log.Fatalf("Failed to wipe %s: %v", table, err)
			}
		}
		log.Println("Existing data wiped")
	}

	seedAdmin(db, *adminEmail, *adminPassword)
	seedReports(db)
	users := seedUsers(db)
	seedVolunteers(db, users)

	log.Println("Database seeded with sample data")
}

func seedAdmin(db *gorm.DB, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := model.AdminUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	log.Printf("Seeded admin user %s", email)
}

func seedReports(db *gorm.DB) {
	statuses := []string{model.StatusOpen, model.StatusInProgress, model.StatusResolved}

	for _, sample := range sampleReports {
		verifiedCount := rand.Intn(5)
		severity := scoring.CalculateSeverity(sample.label, sample.confidence, verifiedCount, false)
		createdAt := time.Now().Add(-time.Duration(rand.Intn(7*24)) * time.Hour)

		report := model.Report{
			ID:            uuid.NewString(),
			PhotoURL:      "https://via.placeholder.com/500?text=" + sample.label,
			Description:   sample.description,
			Lat:           sample.lat,
			Lon:           sample.lon,
			Label:         sample.label,
			Confidence:    sample.confidence,
			Severity:      severity,
			Department:    scoring.DepartmentFor(sample.label),
			VerifiedCount: verifiedCount,
			Status:        statuses[rand.Intn(len(statuses))],
			CreatedAt:     createdAt,
			UpdatedAt:     time.Now(),
		}
		if err := db.Create(&report).Error; err != nil {
			log.Fatalf("Failed to seed report: %v", err)
		}
	}
	log.Printf("Seeded %d reports", len(sampleReports))
}

func seedUsers(db *gorm.DB) []model.User {
	users := make([]model.User, 5)
	for i := range users {
		users[i] = model.User{
			ID:        uuid.NewString(),
			Name:      "User " + string(rune('1'+i)),
			Email:     "user" + string(rune('1'+i)) + "@example.com",
			Points:    rand.Intn(200) + 10,
			CreatedAt: time.Now(),
		}
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatalf("Failed to seed user: %v", err)
		}
	}
	log.Printf("Seeded %d users", len(users))
	return users
}

func seedVolunteers(db *gorm.DB, users []model.User) {
	for i := 0; i < 3; i++ {
		volunteer := model.Volunteer{
			ID:                 uuid.NewString(),
			Name:               "Volunteer " + string(rune('1'+i)),
			ClaimedIssuesCount: rand.Intn(10),
			ResolvedCount:      rand.Intn(8),
			JoinedAt:           time.Now(),
		}
		// Link the first volunteer to a citizen account so resolve rewards
		// land on a user ledger.
		if i == 0 && len(users) > 0 {
			volunteer.UserID = &users[0].ID
		}
		if err := db.Create(&volunteer).Error; err != nil {
			log.Fatalf("Failed to seed volunteer: %v", err)
		}
	}
	log.Println("Seeded 3 volunteers")
}
