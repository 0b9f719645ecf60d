package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"campuslibrary/internal/auth"
	"campuslibrary/internal/handlers"
	"campuslibrary/internal/repositories"
	"campuslibrary/internal/services"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get generic DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	studentRepo := repositories.NewStudentRepository(db)
	adminRepo := repositories.NewAdminUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)
	penaltyRepo := repositories.NewPenaltyRepository(db)
	favoriteRepo := repositories.NewFavoriteRepository(db)

	authSvc := services.NewAuthService(studentRepo, adminRepo, nil)
	borrowSvc := services.NewBorrowService(db, bookRepo, studentRepo, borrowRepo, penaltyRepo, nil)
	catalogSvc := services.NewCatalogService(db, bookRepo, borrowRepo, nil)
	adminSvc := services.NewAdminService(db, bookRepo, studentRepo, borrowRepo, penaltyRepo, nil)
	favoriteSvc := services.NewFavoriteService(favoriteRepo, bookRepo, nil)

	issuer := auth.NewTokenIssuer([]byte(jwtSecret))

	router := gin.Default()

	handlers.RegisterRoutes(router, issuer, authSvc, borrowSvc, catalogSvc, adminSvc, favoriteSvc)

	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = ":8080"
	}

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
