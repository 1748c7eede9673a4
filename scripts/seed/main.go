// Command seed provisions a fresh database with an admin account and a
// small demo dataset so the API is usable right after first start.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sahana-institute/payroll-api/internal/models"
	"github.com/sahana-institute/payroll-api/internal/repository"
	"github.com/sahana-institute/payroll-api/pkg/config"
	"github.com/sahana-institute/payroll-api/pkg/database"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@institute.local", "admin account email")
	adminPassword := flag.String("admin-password", "changeme123", "admin account password")
	withDemoData := flag.Bool("demo-data", false, "also seed demo teachers, classes and collections")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	if _, err := users.FindByEmail(ctx, *adminEmail); err == nil {
		log.Printf("admin %s already exists, skipping", *adminEmail)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		now := time.Now().UTC()
		admin := &models.User{
			Email:        *adminEmail,
			PasswordHash: string(hash),
			FullName:     "Administrator",
			Role:         models.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatalf("create admin: %v", err)
		}
		log.Printf("created admin %s", *adminEmail)
	}

	if !*withDemoData {
		return
	}

	teachers := repository.NewTeacherRepository(db)
	classes := repository.NewClassRepository(db)
	collections := repository.NewCollectionRepository(db)

	maths := &models.Class{Name: "Mathematics - Grade 10", FeePerStudent: 1500, InstituteFeePercentage: 10}
	physics := &models.Class{Name: "Physics - Grade 11", FeePerStudent: 2000, InstituteFeePercentage: 15}
	for _, class := range []*models.Class{maths, physics} {
		if err := classes.Create(ctx, class); err != nil {
			log.Fatalf("create class %s: %v", class.Name, err)
		}
	}

	perera := &models.Teacher{Name: "K. Perera", Active: true}
	silva := &models.Teacher{Name: "N. Silva", Active: true}
	for _, teacher := range []*models.Teacher{perera, silva} {
		if err := teachers.Create(ctx, teacher); err != nil {
			log.Fatalf("create teacher %s: %v", teacher.Name, err)
		}
	}

	monthStart := time.Now().UTC()
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	seedCollections := []*models.DailyCollection{
		{Date: monthStart.AddDate(0, 0, 2), TeacherID: perera.ID, ClassID: maths.ID, Amount: 45000, StudentCount: 30, TuteCostPerStudent: 50, PostalFeePerStudent: 20},
		{Date: monthStart.AddDate(0, 0, 9), TeacherID: perera.ID, ClassID: maths.ID, Amount: 42000, StudentCount: 28, TuteCostPerStudent: 50, PostalFeePerStudent: 20},
		{Date: monthStart.AddDate(0, 0, 4), TeacherID: silva.ID, ClassID: physics.ID, Amount: 60000, StudentCount: 30, TuteCostPerStudent: 80, PostalFeePerStudent: 25},
	}
	for _, collection := range seedCollections {
		if err := collections.Create(ctx, collection); err != nil {
			log.Fatalf("create collection: %v", err)
		}
	}

	log.Printf("seeded %d classes, %d teachers, %d collections", 2, 2, len(seedCollections))
}
