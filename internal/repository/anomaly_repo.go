package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fec-audit-backend/internal/models"
)

type AnomalyRepository struct {
	db *gorm.DB
}

func NewAnomalyRepository(db *gorm.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) InsertBatch(anomalies []models.Anomaly) error {
	if len(anomalies) == 0 {
		return nil
	}
	return r.db.CreateInBatches(anomalies, 100).Error
}

func (r *AnomalyRepository) ListByRun(missionID, runID uuid.UUID) ([]models.Anomaly, error) {
	var anomalies []models.Anomaly
	err := r.db.
		Where("mission_id = ? AND run_id = ?", missionID, runID).
		Order("score DESC, amount DESC").
		Find(&anomalies).Error
	return anomalies, err
}

func (r *AnomalyRepository) ListByMission(missionID uuid.UUID) ([]models.Anomaly, error) {
	var anomalies []models.Anomaly
	err := r.db.
		Where("mission_id = ?", missionID).
		Order("created_at DESC, score DESC").
		Find(&anomalies).Error
	return anomalies, err
}

// SumAmountByRun totals the financial impact of one analysis run.
func (r *AnomalyRepository) SumAmountByRun(runID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.Model(&models.Anomaly{}).
		Where("run_id = ?", runID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
