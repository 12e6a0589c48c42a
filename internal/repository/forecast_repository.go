package repository

import (
	"github.com/consultio/psa-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormForecastRepository is a GORM implementation of ForecastRepository
type GormForecastRepository struct {
	db *gorm.DB
}

// NewForecastRepository creates a new ForecastRepository
func NewForecastRepository(db *gorm.DB) ForecastRepository {
	return &GormForecastRepository{db: db}
}

// Find returns the forecast row for the unique cell, if any
func (r *GormForecastRepository) Find(userID string, projectID uint64, weekStarting string) (*models.ResourceForecast, error) {
	var f models.ResourceForecast
	err := r.db.
		Where("user_id = ? AND project_id = ? AND week_starting = ?", userID, projectID, weekStarting).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Upsert inserts the row or updates forecast hours on the unique
// (user, project, week) key. Concurrent upserts for the same cell converge
// to a single row; the storage layer's conflict resolution decides the winner.
func (r *GormForecastRepository) Upsert(f *models.ResourceForecast) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "project_id"},
				{Name: "week_starting"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"forecast_hours", "notes", "updated_at"}),
		}).
		Create(f).Error
}

// ListByUserWeek returns all of a user's forecasts for one week
func (r *GormForecastRepository) ListByUserWeek(userID, weekStarting string) ([]models.ResourceForecast, error) {
	var forecasts []models.ResourceForecast
	err := r.db.
		Where("user_id = ? AND week_starting = ?", userID, weekStarting).
		Find(&forecasts).Error
	return forecasts, err
}

// ListByUserProject returns all forecasts for a (user, project) pair
func (r *GormForecastRepository) ListByUserProject(userID string, projectID uint64) ([]models.ResourceForecast, error) {
	var forecasts []models.ResourceForecast
	err := r.db.
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Order("week_starting ASC").
		Find(&forecasts).Error
	return forecasts, err
}
