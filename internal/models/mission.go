package models

import (
	"time"

	"github.com/google/uuid"
)

// Mission statuses. Transitions only move forward.
const (
	MissionStatusInitialized = "initialized"
	MissionStatusAnalyzing   = "analyzing"
	MissionStatusAnalyzed    = "analyzed"
)

type Mission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyName string    `gorm:"index" json:"company_name"`
	FiscalYear  string    `json:"fiscal_year"`
	ClientEmail string    `json:"client_email"`

	// Audit-period financial inputs (reporting currency).
	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"net_income"`
	TotalAssets float64 `json:"total_assets"`

	// ISA 320 thresholds derived from the inputs.
	SignificanceThreshold float64 `json:"significance_threshold"`
	PlanningThreshold     float64 `json:"planning_threshold"`
	ReportingThreshold    float64 `json:"reporting_threshold"`

	Status        string    `gorm:"index" json:"status"`
	DownloadCount int       `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
}
