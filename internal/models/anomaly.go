package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Criticality levels, ordered moderate < high < critical.
const (
	CriticalityModerate = "moderate"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"
)

// Anomaly sources.
const (
	SourceStatistical = "statistical"
	SourceLLM         = "llm"
)

type Anomaly struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MissionID uuid.UUID `gorm:"index" json:"mission_id"`
	RunID     uuid.UUID `gorm:"index" json:"run_id"`

	Cycle       string  `json:"cycle"`
	Type        string  `json:"type"`
	Criticality string  `gorm:"index" json:"criticality"`
	Score       float64 `json:"score"`
	Amount      float64 `gorm:"index" json:"amount"`

	AccountNum     string `json:"account_num"`
	Label          string `json:"label"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`

	Source    string         `json:"source"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
