package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fec-audit-backend/internal/models"
)

type MissionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

func (r *MissionRepository) Create(m *models.Mission) error {
	return r.db.Create(m).Error
}

func (r *MissionRepository) List() ([]models.Mission, error) {
	var missions []models.Mission
	err := r.db.Order("created_at DESC").Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) GetByID(id uuid.UUID) (*models.Mission, error) {
	var mission models.Mission
	if err := r.db.First(&mission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mission, nil
}

func (r *MissionRepository) Save(m *models.Mission) error {
	return r.db.Save(m).Error
}

func (r *MissionRepository) UpdateStatus(id uuid.UUID, status string) error {
	return r.db.Model(&models.Mission{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// IncrementDownloadCount bumps the download counter atomically and returns
// the new value.
func (r *MissionRepository) IncrementDownloadCount(id uuid.UUID) (int, error) {
	err := r.db.Model(&models.Mission{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).
		Error
	if err != nil {
		return 0, err
	}
	mission, err := r.GetByID(id)
	if err != nil {
		return 0, err
	}
	return mission.DownloadCount, nil
}
