package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fec-audit-backend/internal/models"
)

type AnalysisRunRepository struct {
	db *gorm.DB
}

func NewAnalysisRunRepository(db *gorm.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

func (r *AnalysisRunRepository) Create(run *models.AnalysisRun) error {
	return r.db.Create(run).Error
}

func (r *AnalysisRunRepository) GetByID(id uuid.UUID) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	if err := r.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *AnalysisRunRepository) Complete(id uuid.UUID, rowCount, anomalyCount int) error {
	now := time.Now()
	return r.db.Model(&models.AnalysisRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"row_count":     rowCount,
			"anomaly_count": anomalyCount,
			"status":        models.RunStatusCompleted,
			"completed_at":  now,
		}).Error
}

func (r *AnalysisRunRepository) Fail(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&models.AnalysisRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.RunStatusFailed,
			"completed_at": now,
		}).Error
}

// LatestCompleted returns the most recent completed run for a mission, or
// gorm.ErrRecordNotFound when the mission has never been analyzed.
func (r *AnalysisRunRepository) LatestCompleted(missionID uuid.UUID) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := r.db.
		Where("mission_id = ? AND status = ?", missionID, models.RunStatusCompleted).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
