package main

import (
	"fmt"
	"log"
	"time"

	"busline/internal/fleet"
	"busline/internal/shared/config"
	"busline/internal/shared/database"
	"busline/internal/trips"
	"busline/internal/users"

	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Busline database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"payments",
		"booking_seats",
		"bookings",
		"trips",
		"buses",
		"routes",
		"terminals",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll creates users, terminals, routes, buses and a first batch of trips
func (s *Seeder) SeedAll() error {
	operator, err := s.seedUsers()
	if err != nil {
		return err
	}

	terminals, err := s.seedTerminals()
	if err != nil {
		return err
	}

	routes, err := s.seedRoutes()
	if err != nil {
		return err
	}

	buses, err := s.seedBuses(operator)
	if err != nil {
		return err
	}

	return s.seedTrips(buses, routes, terminals)
}

func (s *Seeder) seedUsers() (*users.User, error) {
	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		return string(h)
	}

	accounts := []users.User{
		{FullName: "Admin User", Email: "admin@busline.dev", PasswordHash: hash("admin12345"), Role: users.RoleAdmin, Active: true},
		{FullName: "Kwame Mensah", Email: "operator@busline.dev", PasswordHash: hash("operator12345"), Role: users.RoleOperator, Active: true},
		{FullName: "Ama Serwaa", Email: "passenger@busline.dev", PasswordHash: hash("passenger12345"), Role: users.RoleUser, Active: true},
	}

	if err := s.db.PostgreSQL.Create(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	fmt.Printf("  Created %d users\n", len(accounts))
	return &accounts[1], nil
}

func (s *Seeder) seedTerminals() ([]fleet.Terminal, error) {
	terminals := []fleet.Terminal{
		{Name: "Circle Interchange", City: "Accra", Address: "Kwame Nkrumah Circle", Active: true},
		{Name: "Adum Station", City: "Kumasi", Address: "Prempeh II Street", Active: true},
		{Name: "Takoradi Main", City: "Takoradi", Address: "Market Circle", Active: true},
	}

	if err := s.db.PostgreSQL.Create(&terminals).Error; err != nil {
		return nil, fmt.Errorf("failed to seed terminals: %w", err)
	}

	fmt.Printf("  Created %d terminals\n", len(terminals))
	return terminals, nil
}

func (s *Seeder) seedRoutes() ([]fleet.Route, error) {
	routes := []fleet.Route{
		{Origin: "Accra", Destination: "Kumasi", DistanceKm: 250, Fare: 120, Active: true},
		{Origin: "Accra", Destination: "Takoradi", DistanceKm: 230, Fare: 110, Active: true},
	}

	if err := s.db.PostgreSQL.Create(&routes).Error; err != nil {
		return nil, fmt.Errorf("failed to seed routes: %w", err)
	}

	fmt.Printf("  Created %d routes\n", len(routes))
	return routes, nil
}

func (s *Seeder) seedBuses(operator *users.User) ([]fleet.Bus, error) {
	buses := []fleet.Bus{
		{PlateNumber: "GR-1234-24", BusType: "VIP", TotalSeats: 44, OperatorID: operator.ID, Active: true},
		{PlateNumber: "GR-5678-24", BusType: "Standard", TotalSeats: 55, OperatorID: operator.ID, Active: true},
	}

	if err := s.db.PostgreSQL.Create(&buses).Error; err != nil {
		return nil, fmt.Errorf("failed to seed buses: %w", err)
	}

	fmt.Printf("  Created %d buses\n", len(buses))
	return buses, nil
}

func (s *Seeder) seedTrips(buses []fleet.Bus, routes []fleet.Route, terminals []fleet.Terminal) error {
	departure := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	batch := []trips.Trip{
		{
			BusID:               buses[0].ID,
			RouteID:             routes[0].ID,
			DepartureTerminalID: terminals[0].ID,
			ArrivalTerminalID:   terminals[1].ID,
			DepartureTime:       departure,
			ArrivalTime:         departure.Add(5 * time.Hour),
			Fare:                routes[0].Fare,
			Capacity:            buses[0].TotalSeats,
			SeatsRemaining:      buses[0].TotalSeats,
			Status:              trips.StatusScheduled,
			Active:              true,
		},
		{
			BusID:               buses[1].ID,
			RouteID:             routes[1].ID,
			DepartureTerminalID: terminals[0].ID,
			ArrivalTerminalID:   terminals[2].ID,
			DepartureTime:       departure.Add(2 * time.Hour),
			ArrivalTime:         departure.Add(6 * time.Hour),
			Fare:                routes[1].Fare,
			Capacity:            buses[1].TotalSeats,
			SeatsRemaining:      buses[1].TotalSeats,
			Status:              trips.StatusScheduled,
			Active:              true,
		},
	}

	if err := s.db.PostgreSQL.Create(&batch).Error; err != nil {
		return fmt.Errorf("failed to seed trips: %w", err)
	}

	fmt.Printf("  Created %d trips\n", len(batch))
	return nil
}
