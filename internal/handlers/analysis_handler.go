package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fec-audit-backend/internal/services/analysis"
	"fec-audit-backend/internal/services/ledger"
)

type AnalysisHandler struct {
	service *analysis.Service
	log     *logrus.Logger
}

func NewAnalysisHandler(service *analysis.Service, log *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, log: log}
}

// Analyze accepts a ledger upload and runs the full audit pipeline
// synchronously, returning the run identity and anomaly count.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}

	run, err := h.service.AnalyzeFile(c.Request.Context(), missionID, header.Filename, raw)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrUnsupportedFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file format, expected .csv, .txt, .xlsx or .xls"})
		case errors.Is(err, ledger.ErrUnreadable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read the file as a ledger export, check the delimiter and encoding"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		default:
			h.log.WithError(err).Error("analysis failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error during analysis"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":             run.ID.String(),
		"rows_analyzed":      run.RowCount,
		"anomalies_detected": run.AnomalyCount,
	})
}

// ListAnomalies returns a mission's anomalies, scoped to the latest
// completed run unless ?run_id= is given.
func (h *AnalysisHandler) ListAnomalies(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	var runID *uuid.UUID
	if raw := c.Query("run_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
			return
		}
		runID = &id
	}

	anomalies, err := h.service.Anomalies(missionID, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		h.log.WithError(err).Error("listing anomalies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list anomalies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": anomalies,
		"count": len(anomalies),
	})
}

// GetOpinion returns the derived opinion for a mission.
func (h *AnalysisHandler) GetOpinion(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission ID"})
		return
	}

	opinion, err := h.service.Opinion(missionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		h.log.WithError(err).Error("deriving opinion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not derive opinion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"opinion": opinion})
}
