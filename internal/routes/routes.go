package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fec-audit-backend/internal/config"
	handler "fec-audit-backend/internal/handlers"
	"fec-audit-backend/internal/repository"
	"fec-audit-backend/internal/services/analysis"
	"fec-audit-backend/internal/services/audit"
	"fec-audit-backend/internal/services/reasoning"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	missionRepo := repository.NewMissionRepository(db)
	runRepo := repository.NewAnalysisRunRepository(db)
	anomalyRepo := repository.NewAnomalyRepository(db)

	var reviewer audit.Reviewer
	if cfg.AnthropicAPIKey != "" {
		reviewer = reasoning.NewClient(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMTimeout, log)
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, qualitative review disabled")
	}

	engine := audit.NewEngine(reviewer, log)
	engine.SampleLimit = cfg.LLMSampleLimit

	analysisService := analysis.NewService(missionRepo, runRepo, anomalyRepo, engine, log)

	missionHandler := handler.NewMissionHandler(missionRepo, log)
	analysisHandler := handler.NewAnalysisHandler(analysisService, log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	missions := api.Group("/missions")
	{
		missions.POST("", missionHandler.Create)
		missions.GET("", missionHandler.List)
		missions.GET("/:id", missionHandler.Get)
		missions.PUT("/:id/financials", missionHandler.UpdateFinancials)
		missions.POST("/:id/analyze", analysisHandler.Analyze)
		missions.GET("/:id/anomalies", analysisHandler.ListAnomalies)
		missions.GET("/:id/opinion", analysisHandler.GetOpinion)
		missions.POST("/:id/download", missionHandler.TrackDownload)
	}
}
