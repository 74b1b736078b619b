package main

import (
	"strings"
	"time"

	"fec-audit-backend/internal/config"
	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on system env")
	}

	cfg := config.NewConfig()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Mission{},
		&models.AnalysisRun{},
		&models.Anomaly{},
	); err != nil {
		logger.Fatalf("Failed to migrate schema: %v", err)
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg, logger)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
