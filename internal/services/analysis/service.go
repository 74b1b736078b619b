package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fec-audit-backend/internal/models"
	"fec-audit-backend/internal/repository"
	"fec-audit-backend/internal/services/audit"
	"fec-audit-backend/internal/services/ledger"
)

// Service drives the full audit pipeline for one uploaded ledger file:
// normalize, detect, persist, and move the mission through its lifecycle.
type Service struct {
	missions  *repository.MissionRepository
	runs      *repository.AnalysisRunRepository
	anomalies *repository.AnomalyRepository
	engine    *audit.Engine
	log       *logrus.Logger
}

func NewService(
	missions *repository.MissionRepository,
	runs *repository.AnalysisRunRepository,
	anomalies *repository.AnomalyRepository,
	engine *audit.Engine,
	log *logrus.Logger,
) *Service {
	return &Service{
		missions:  missions,
		runs:      runs,
		anomalies: anomalies,
		engine:    engine,
		log:       log,
	}
}

// AnalyzeFile runs the pipeline synchronously and returns the completed run.
// Only ingestion failures are fatal: a failed detector or reviewer degrades
// to partial results inside the engine.
func (s *Service) AnalyzeFile(ctx context.Context, missionID uuid.UUID, filename string, raw []byte) (*models.AnalysisRun, error) {
	mission, err := s.missions.GetByID(missionID)
	if err != nil {
		return nil, err
	}

	entries, err := ledger.Load(raw, filename)
	if err != nil {
		return nil, err
	}

	run := &models.AnalysisRun{
		ID:        uuid.New(),
		MissionID: mission.ID,
		Filename:  filename,
		Status:    models.RunStatusProcessing,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if err := s.runs.Create(run); err != nil {
		return nil, fmt.Errorf("creating analysis run: %w", err)
	}
	if err := s.missions.UpdateStatus(mission.ID, models.MissionStatusAnalyzing); err != nil {
		s.log.WithError(err).Warn("could not mark mission as analyzing")
	}

	result := s.engine.Run(ctx, entries)

	records := make([]models.Anomaly, 0, len(result.Anomalies))
	for _, d := range result.Anomalies {
		records = append(records, toAnomaly(d, mission.ID, run.ID))
	}
	if err := s.anomalies.InsertBatch(records); err != nil {
		if failErr := s.runs.Fail(run.ID); failErr != nil {
			s.log.WithError(failErr).Warn("could not mark run as failed")
		}
		return nil, fmt.Errorf("persisting anomalies: %w", err)
	}

	if err := s.runs.Complete(run.ID, result.RowCount, len(records)); err != nil {
		return nil, fmt.Errorf("completing analysis run: %w", err)
	}
	if err := s.missions.UpdateStatus(mission.ID, models.MissionStatusAnalyzed); err != nil {
		s.log.WithError(err).Warn("could not mark mission as analyzed")
	}

	s.log.WithFields(logrus.Fields{
		"mission_id":        mission.ID,
		"run_id":            run.ID,
		"rows":              result.RowCount,
		"anomalies":         len(records),
		"detector_failures": result.DetectorFailures,
		"review_failed":     result.ReviewFailed,
	}).Info("analysis completed")

	run.RowCount = result.RowCount
	run.AnomalyCount = len(records)
	run.Status = models.RunStatusCompleted
	return run, nil
}

// Anomalies lists a mission's anomalies. With a nil runID it scopes to the
// latest completed run, so repeated analyses do not double-count; a mission
// without any completed run yields an empty list.
func (s *Service) Anomalies(missionID uuid.UUID, runID *uuid.UUID) ([]models.Anomaly, error) {
	if _, err := s.missions.GetByID(missionID); err != nil {
		return nil, err
	}
	if runID == nil {
		run, err := s.runs.LatestCompleted(missionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Anomaly{}, nil
		}
		if err != nil {
			return nil, err
		}
		runID = &run.ID
	}
	return s.anomalies.ListByRun(missionID, *runID)
}

// Opinion derives the audit opinion from the latest completed run's total
// anomaly amount versus the mission's significance threshold.
func (s *Service) Opinion(missionID uuid.UUID) (audit.Opinion, error) {
	mission, err := s.missions.GetByID(missionID)
	if err != nil {
		return audit.Opinion{}, err
	}

	var total float64
	run, err := s.runs.LatestCompleted(missionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Never analyzed: nothing flagged yet.
	case err != nil:
		return audit.Opinion{}, err
	default:
		total, err = s.anomalies.SumAmountByRun(run.ID)
		if err != nil {
			return audit.Opinion{}, err
		}
	}

	return audit.DeriveOpinion(total, mission.SignificanceThreshold), nil
}

func toAnomaly(d audit.Draft, missionID, runID uuid.UUID) models.Anomaly {
	a := models.Anomaly{
		ID:             uuid.New(),
		MissionID:      missionID,
		RunID:          runID,
		Cycle:          d.Cycle,
		Type:           d.Type,
		Criticality:    d.Criticality,
		Score:          d.Score,
		Amount:         d.Amount,
		AccountNum:     d.AccountNum,
		Label:          d.Label,
		Description:    d.Description,
		Recommendation: d.Recommendation,
		Source:         d.Source,
		CreatedAt:      time.Now(),
	}
	if len(d.Details) > 0 {
		if detailsJSON, err := json.Marshal(d.Details); err == nil {
			a.Details = detailsJSON
		}
	}
	return a
}
