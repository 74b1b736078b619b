package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/repository"
	"fec-audit-backend/internal/services/audit"
)

type MissionHandler struct {
	missions *repository.MissionRepository
	log      *logrus.Logger
}

func NewMissionHandler(missions *repository.MissionRepository, log *logrus.Logger) *MissionHandler {
	return &MissionHandler{missions: missions, log: log}
}

type createMissionRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	FiscalYear  string  `json:"fiscal_year"`
	ClientEmail string  `json:"client_email" binding:"omitempty,email"`
	Revenue     float64 `json:"revenue" binding:"gte=0"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets" binding:"gte=0"`
}

func (h *MissionHandler) Create(c *gin.Context) {
	var payload createMissionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	fiscalYear := payload.FiscalYear
	if fiscalYear == "" {
		fiscalYear = time.Now().Format("2006")
	}

	thresholds := audit.ComputeThresholds(payload.Revenue, payload.NetIncome, payload.TotalAssets)
	mission := &models.Mission{
		ID:                    uuid.New(),
		CompanyName:           payload.CompanyName,
		FiscalYear:            fiscalYear,
		ClientEmail:           payload.ClientEmail,
		Revenue:               payload.Revenue,
		NetIncome:             payload.NetIncome,
		TotalAssets:           payload.TotalAssets,
		SignificanceThreshold: thresholds.Significance,
		PlanningThreshold:     thresholds.Planning,
		ReportingThreshold:    thresholds.Reporting,
		Status:                models.MissionStatusInitialized,
		CreatedAt:             time.Now(),
	}

	if err := h.missions.Create(mission); err != nil {
		h.log.WithError(err).Error("creating mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create mission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mission": mission})
}

func (h *MissionHandler) List(c *gin.Context) {
	missions, err := h.missions.List()
	if err != nil {
		h.log.WithError(err).Error("listing missions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list missions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"missions": missions})
}

func (h *MissionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	mission, err := h.missions.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mission": mission})
}

type updateFinancialsRequest struct {
	Revenue     float64 `json:"revenue" binding:"gte=0"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets" binding:"gte=0"`
}

// UpdateFinancials replaces the mission's financial inputs and recomputes
// the ISA 320 thresholds from them.
func (h *MissionHandler) UpdateFinancials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	var payload updateFinancialsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	mission, err := h.missions.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		return
	}

	thresholds := audit.ComputeThresholds(payload.Revenue, payload.NetIncome, payload.TotalAssets)
	mission.Revenue = payload.Revenue
	mission.NetIncome = payload.NetIncome
	mission.TotalAssets = payload.TotalAssets
	mission.SignificanceThreshold = thresholds.Significance
	mission.PlanningThreshold = thresholds.Planning
	mission.ReportingThreshold = thresholds.Reporting

	if err := h.missions.Save(mission); err != nil {
		h.log.WithError(err).Error("updating mission financials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update mission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mission": mission})
}

// TrackDownload increments the report download counter.
func (h *MissionHandler) TrackDownload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	count, err := h.missions.IncrementDownloadCount(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		h.log.WithError(err).Error("tracking download")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not track download"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_count": count})
}
