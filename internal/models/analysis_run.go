package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// AnalysisRun records one execution of the audit pipeline over one uploaded
// ledger file. Anomalies carry the run id, so repeated analyses of the same
// mission stay distinguishable.
type AnalysisRun struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MissionID    uuid.UUID  `gorm:"index" json:"mission_id"`
	Filename     string     `json:"filename"`
	RowCount     int        `json:"row_count"`
	AnomalyCount int        `json:"anomaly_count"`
	Status       string     `gorm:"index" json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
